package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeDelimited_RoundTrip(t *testing.T) {
	original := &Response{
		CallbackIdx: 7,
		Kind:        RespKindPointer,
		RespPointer: 0xdeadbeef,
	}

	buf, err := EncodeDelimited(nil, original)
	require.NoError(t, err)

	var decoded Response
	offset, err := DecodeDelimited(buf, 0, &decoded)
	require.NoError(t, err)
	assert.Equal(t, len(buf), offset)
	assert.Equal(t, *original, decoded)
}

func TestEncodeDecodeDelimited_MultipleFramesInOneBuffer(t *testing.T) {
	var buf []byte
	var err error
	buf, err = EncodeDelimited(buf, &Response{CallbackIdx: 1, Kind: RespKindConstant})
	require.NoError(t, err)
	buf, err = EncodeDelimited(buf, &Response{CallbackIdx: 2, Kind: RespKindConstant})
	require.NoError(t, err)

	var first, second Response
	offset, err := DecodeDelimited(buf, 0, &first)
	require.NoError(t, err)
	offset, err = DecodeDelimited(buf, offset, &second)
	require.NoError(t, err)
	assert.Equal(t, len(buf), offset)

	assert.Equal(t, uint32(1), first.CallbackIdx)
	assert.Equal(t, uint32(2), second.CallbackIdx)
}

func TestDecodeDelimited_PartialLengthPrefixDoesNotAdvance(t *testing.T) {
	buf, err := EncodeDelimited(nil, &Response{CallbackIdx: 1, Kind: RespKindConstant})
	require.NoError(t, err)

	var decoded Response
	_, err = DecodeDelimited(buf[:0], 0, &decoded)
	assert.ErrorIs(t, err, ErrPartialMessage)
}

func TestDecodeDelimited_PartialPayloadDoesNotAdvance(t *testing.T) {
	buf, err := EncodeDelimited(nil, &Response{CallbackIdx: 1, Kind: RespKindClosingError, ClosingError: "boom"})
	require.NoError(t, err)

	truncated := buf[:len(buf)-1]
	var decoded Response
	offset, err := DecodeDelimited(truncated, 0, &decoded)
	assert.ErrorIs(t, err, ErrPartialMessage)
	assert.Equal(t, 0, offset)
}
