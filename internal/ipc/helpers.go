package ipc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// consumeBytesField consumes a length-delimited field, verifying the wire
// type actually matches BytesType before delegating to protowire.
func consumeBytesField(data []byte, typ protowire.Type) ([]byte, int) {
	if typ != protowire.BytesType {
		return nil, -1
	}
	return protowire.ConsumeBytes(data)
}

func errBadField(msg, field string) error {
	return fmt.Errorf("ipc: %s: malformed field %q", msg, field)
}
