package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRequest_SingleCommandInlineRoundTrip(t *testing.T) {
	original := &CommandRequest{
		CallbackIdx: 42,
		RootSpanPtr: 99,
		Kind:        KindSingleCommand,
		SingleCommand: &SingleCommand{
			RequestType: 1, // Get
			ArgsArray:   [][]byte{[]byte("k")},
		},
	}

	payload, err := original.Marshal()
	require.NoError(t, err)

	var decoded CommandRequest
	require.NoError(t, decoded.Unmarshal(payload))

	assert.Equal(t, *original, decoded)
}

func TestCommandRequest_SingleCommandPointerRoundTrip(t *testing.T) {
	original := &CommandRequest{
		CallbackIdx: 1,
		Kind:        KindSingleCommand,
		SingleCommand: &SingleCommand{
			RequestType:    2, // Set
			ArgsVecPointer: 0x1234,
		},
	}

	payload, err := original.Marshal()
	require.NoError(t, err)

	var decoded CommandRequest
	require.NoError(t, decoded.Unmarshal(payload))

	require.NotNil(t, decoded.SingleCommand)
	assert.Equal(t, uint64(0x1234), decoded.SingleCommand.ArgsVecPointer)
	assert.Empty(t, decoded.SingleCommand.ArgsArray)
}

func TestCommandRequest_BatchRoundTrip(t *testing.T) {
	original := &CommandRequest{
		CallbackIdx: 3,
		Kind:        KindBatch,
		Batch: &Batch{
			Commands: []BatchCommand{
				{RequestType: 2, ArgsArray: [][]byte{[]byte("k"), []byte("1")}},
				{RequestType: 3, ArgsArray: [][]byte{[]byte("k")}},
			},
			IsAtomic:     true,
			RaiseOnError: true,
			TimeoutMs:    500,
		},
	}

	payload, err := original.Marshal()
	require.NoError(t, err)

	var decoded CommandRequest
	require.NoError(t, decoded.Unmarshal(payload))

	assert.Equal(t, *original, decoded)
}

func TestCommandRequest_ScriptRoundTrip(t *testing.T) {
	original := &CommandRequest{
		CallbackIdx: 4,
		Kind:        KindScript,
		Script: &Script{
			Hash:      "abc123",
			KeysArray: [][]byte{[]byte("k1")},
			ArgsArray: [][]byte{[]byte("a1")},
		},
	}

	payload, err := original.Marshal()
	require.NoError(t, err)

	var decoded CommandRequest
	require.NoError(t, decoded.Unmarshal(payload))

	assert.Equal(t, *original, decoded)
}

func TestCommandRequest_ClusterScanRoundTrip(t *testing.T) {
	original := &CommandRequest{
		CallbackIdx: 5,
		Kind:        KindClusterScan,
		ClusterScan: &ClusterScan{
			Cursor:               "0",
			Match:                "user:*",
			Count:                100,
			AllowNonCoveredSlots: true,
		},
	}

	payload, err := original.Marshal()
	require.NoError(t, err)

	var decoded CommandRequest
	require.NoError(t, decoded.Unmarshal(payload))

	assert.Equal(t, *original, decoded)
}

func TestCommandRequest_RefreshIamTokenRoundTrip(t *testing.T) {
	original := &CommandRequest{CallbackIdx: 6, Kind: KindRefreshIamToken}

	payload, err := original.Marshal()
	require.NoError(t, err)

	var decoded CommandRequest
	require.NoError(t, decoded.Unmarshal(payload))

	assert.Equal(t, KindRefreshIamToken, decoded.Kind)
	assert.Equal(t, uint32(6), decoded.CallbackIdx)
}
