// Package ipc implements the length-delimited protobuf framing used between
// a client session and the networking runtime, plus the three top-level
// message types exchanged over it: ConnectionRequest, CommandRequest, and
// Response.
//
// There is no .proto file and no protoc-gen-go codegen available in this
// tree, so every message marshals and unmarshals itself directly against
// google.golang.org/protobuf/encoding/protowire — the same primitives
// protoc-gen-go targets, just driven by hand.
package ipc

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrPartialMessage is returned by DecodeDelimited when the buffer does not
// yet contain a full frame (length prefix or payload). The caller's offset
// must not be advanced when this is returned.
var ErrPartialMessage = errors.New("ipc: partial message")

// Message is implemented by every wire type this package frames.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// EncodeDelimited appends a varint length prefix followed by the marshaled
// message to buf, returning the extended slice. It never flushes or writes
// to a socket directly; callers own when bytes actually go out.
func EncodeDelimited(buf []byte, msg Message) ([]byte, error) {
	payload, err := msg.Marshal()
	if err != nil {
		return buf, fmt.Errorf("ipc: marshal: %w", err)
	}

	buf = protowire.AppendVarint(buf, uint64(len(payload)))
	buf = append(buf, payload...)
	return buf, nil
}

// DecodeDelimited reads one length-delimited frame from buf starting at
// offset and unmarshals the payload into msg. It returns the offset just
// past the consumed frame.
//
// If the length prefix or the payload is not yet fully present, it returns
// ErrPartialMessage and the original offset, unmodified, so the caller can
// retry once more bytes have arrived. The codec does not interpret message
// contents beyond handing the payload to msg.Unmarshal.
func DecodeDelimited(buf []byte, offset int, msg Message) (int, error) {
	if offset > len(buf) {
		return offset, ErrPartialMessage
	}

	length, n := protowire.ConsumeVarint(buf[offset:])
	if n < 0 {
		return offset, ErrPartialMessage
	}

	payloadStart := offset + n
	payloadEnd := payloadStart + int(length)
	if payloadEnd > len(buf) {
		return offset, ErrPartialMessage
	}

	if err := msg.Unmarshal(buf[payloadStart:payloadEnd]); err != nil {
		return offset, fmt.Errorf("ipc: unmarshal: %w", err)
	}

	return payloadEnd, nil
}
