package ipc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for CommandRequest and its oneof branches.
const (
	fieldCmdCallbackIdx = 1
	fieldCmdRoute       = 2
	fieldCmdRootSpanPtr = 3

	fieldCmdSingleCommand   = 10
	fieldCmdBatch           = 11
	fieldCmdScript          = 12
	fieldCmdUpdatePassword  = 13
	fieldCmdRefreshIamToken = 14
	fieldCmdClusterScan     = 15

	fieldSingleRequestType    = 1
	fieldSingleArgsArray      = 2
	fieldSingleArgsVecPointer = 3

	fieldBatchCommands             = 1
	fieldBatchIsAtomic             = 2
	fieldBatchRaiseOnError         = 3
	fieldBatchRetryServerError     = 4
	fieldBatchRetryConnectionError = 5
	fieldBatchTimeoutMs            = 6

	fieldBatchCmdRequestType = 1
	fieldBatchCmdArgsArray   = 2

	fieldScriptHash            = 1
	fieldScriptKeysArray       = 2
	fieldScriptArgsArray       = 3
	fieldScriptArgsVecPointer  = 4

	fieldUpdatePasswordValue     = 1
	fieldUpdatePasswordImmediate = 2

	fieldScanCursor                  = 1
	fieldScanMatch                   = 2
	fieldScanCount                   = 3
	fieldScanType                    = 4
	fieldScanAllowNonCoveredSlots    = 5
)

// SingleCommand is a single request-type + argument list, with the
// argument list carried either inline or as a runtime-owned pointer
// depending on the inline-vs-pointer threshold decided by C4.
type SingleCommand struct {
	RequestType    uint32
	ArgsArray      [][]byte
	ArgsVecPointer uint64
}

// BatchCommand is one entry of an ordered batch.
type BatchCommand struct {
	RequestType uint32
	ArgsArray   [][]byte
}

// Batch is an ordered list of commands plus atomicity, error-raising, retry,
// and timeout policy.
type Batch struct {
	Commands            []BatchCommand
	IsAtomic             bool
	RaiseOnError         bool
	RetryServerError     bool
	RetryConnectionError bool
	TimeoutMs            uint64
}

// Script is a script invocation. The union of Keys and Args determines
// inline-vs-pointer selection; they are never mixed.
type Script struct {
	Hash           string
	KeysArray      [][]byte
	ArgsArray      [][]byte
	ArgsVecPointer uint64
}

// UpdatePassword rotates the connection password.
type UpdatePassword struct {
	Password      string
	ImmediateAuth bool
}

// ClusterScan requests the next cursor page.
type ClusterScan struct {
	Cursor                 string
	Match                  string
	Count                  int64
	Type                   string
	AllowNonCoveredSlots   bool
}

// CommandRequestKind discriminates the oneof branch carried by a
// CommandRequest.
type CommandRequestKind int

const (
	KindUnspecified CommandRequestKind = iota
	KindSingleCommand
	KindBatch
	KindScript
	KindUpdatePassword
	KindRefreshIamToken
	KindClusterScan
)

// CommandRequest is the union-over-oneof message carrying exactly one of
// SingleCommand, Batch, Script, UpdatePassword, RefreshIamToken (a bare
// marker, no fields), or ClusterScan, plus the callback slot id, an
// optional opaque route, and an optional tracing span pointer.
type CommandRequest struct {
	CallbackIdx uint32
	Route       []byte
	RootSpanPtr uint64

	Kind            CommandRequestKind
	SingleCommand   *SingleCommand
	Batch           *Batch
	Script          *Script
	UpdatePassword  *UpdatePassword
	ClusterScan     *ClusterScan
}

func (m *CommandRequest) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldCmdCallbackIdx, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.CallbackIdx))
	if len(m.Route) > 0 {
		b = protowire.AppendTag(b, fieldCmdRoute, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Route)
	}
	if m.RootSpanPtr != 0 {
		b = protowire.AppendTag(b, fieldCmdRootSpanPtr, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RootSpanPtr)
	}

	switch m.Kind {
	case KindSingleCommand:
		if m.SingleCommand == nil {
			return nil, fmt.Errorf("ipc: command request: kind single_command with nil payload")
		}
		b = protowire.AppendTag(b, fieldCmdSingleCommand, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalSingleCommand(*m.SingleCommand))
	case KindBatch:
		if m.Batch == nil {
			return nil, fmt.Errorf("ipc: command request: kind batch with nil payload")
		}
		b = protowire.AppendTag(b, fieldCmdBatch, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalBatch(*m.Batch))
	case KindScript:
		if m.Script == nil {
			return nil, fmt.Errorf("ipc: command request: kind script with nil payload")
		}
		b = protowire.AppendTag(b, fieldCmdScript, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalScript(*m.Script))
	case KindUpdatePassword:
		if m.UpdatePassword == nil {
			return nil, fmt.Errorf("ipc: command request: kind update_password with nil payload")
		}
		b = protowire.AppendTag(b, fieldCmdUpdatePassword, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalUpdatePassword(*m.UpdatePassword))
	case KindRefreshIamToken:
		b = protowire.AppendTag(b, fieldCmdRefreshIamToken, protowire.BytesType)
		b = protowire.AppendBytes(b, nil)
	case KindClusterScan:
		if m.ClusterScan == nil {
			return nil, fmt.Errorf("ipc: command request: kind cluster_scan with nil payload")
		}
		b = protowire.AppendTag(b, fieldCmdClusterScan, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalClusterScan(*m.ClusterScan))
	default:
		return nil, fmt.Errorf("ipc: command request: unset oneof kind")
	}

	return b, nil
}

func (m *CommandRequest) Unmarshal(data []byte) error {
	*m = CommandRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errBadField("command request", "tag")
		}
		data = data[n:]

		switch num {
		case fieldCmdCallbackIdx:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("command request", "callback_idx")
			}
			m.CallbackIdx = uint32(v)
			data = data[nn:]
		case fieldCmdRoute:
			v, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "route")
			}
			m.Route = append([]byte(nil), v...)
			data = data[nn:]
		case fieldCmdRootSpanPtr:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("command request", "root_span_ptr")
			}
			m.RootSpanPtr = v
			data = data[nn:]
		case fieldCmdSingleCommand:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "single_command")
			}
			sc, err := unmarshalSingleCommand(raw)
			if err != nil {
				return err
			}
			m.Kind = KindSingleCommand
			m.SingleCommand = &sc
			data = data[nn:]
		case fieldCmdBatch:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "batch")
			}
			batch, err := unmarshalBatch(raw)
			if err != nil {
				return err
			}
			m.Kind = KindBatch
			m.Batch = &batch
			data = data[nn:]
		case fieldCmdScript:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "script")
			}
			script, err := unmarshalScript(raw)
			if err != nil {
				return err
			}
			m.Kind = KindScript
			m.Script = &script
			data = data[nn:]
		case fieldCmdUpdatePassword:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "update_password")
			}
			up, err := unmarshalUpdatePassword(raw)
			if err != nil {
				return err
			}
			m.Kind = KindUpdatePassword
			m.UpdatePassword = &up
			data = data[nn:]
		case fieldCmdRefreshIamToken:
			_, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "refresh_iam_token")
			}
			m.Kind = KindRefreshIamToken
			data = data[nn:]
		case fieldCmdClusterScan:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("command request", "cluster_scan")
			}
			scan, err := unmarshalClusterScan(raw)
			if err != nil {
				return err
			}
			m.Kind = KindClusterScan
			m.ClusterScan = &scan
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return errBadField("command request", "unknown")
			}
			data = data[nn:]
		}
	}
	return nil
}

func marshalSingleCommand(c SingleCommand) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldSingleRequestType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.RequestType))
	if c.ArgsVecPointer != 0 {
		b = protowire.AppendTag(b, fieldSingleArgsVecPointer, protowire.VarintType)
		b = protowire.AppendVarint(b, c.ArgsVecPointer)
	} else {
		for _, arg := range c.ArgsArray {
			b = protowire.AppendTag(b, fieldSingleArgsArray, protowire.BytesType)
			b = protowire.AppendBytes(b, arg)
		}
	}
	return b
}

func unmarshalSingleCommand(data []byte) (SingleCommand, error) {
	var c SingleCommand
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, errBadField("single command", "tag")
		}
		data = data[n:]
		switch num {
		case fieldSingleRequestType:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return c, errBadField("single command", "request_type")
			}
			c.RequestType = uint32(v)
			data = data[nn:]
		case fieldSingleArgsArray:
			v, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return c, errBadField("single command", "args_array")
			}
			c.ArgsArray = append(c.ArgsArray, append([]byte(nil), v...))
			data = data[nn:]
		case fieldSingleArgsVecPointer:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return c, errBadField("single command", "args_vec_pointer")
			}
			c.ArgsVecPointer = v
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return c, errBadField("single command", "unknown")
			}
			data = data[nn:]
		}
	}
	return c, nil
}

func marshalBatch(batch Batch) []byte {
	var b []byte
	for _, cmd := range batch.Commands {
		b = protowire.AppendTag(b, fieldBatchCommands, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalBatchCommand(cmd))
	}
	if batch.IsAtomic {
		b = protowire.AppendTag(b, fieldBatchIsAtomic, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if batch.RaiseOnError {
		b = protowire.AppendTag(b, fieldBatchRaiseOnError, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if batch.RetryServerError {
		b = protowire.AppendTag(b, fieldBatchRetryServerError, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if batch.RetryConnectionError {
		b = protowire.AppendTag(b, fieldBatchRetryConnectionError, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if batch.TimeoutMs != 0 {
		b = protowire.AppendTag(b, fieldBatchTimeoutMs, protowire.VarintType)
		b = protowire.AppendVarint(b, batch.TimeoutMs)
	}
	return b
}

func unmarshalBatch(data []byte) (Batch, error) {
	var batch Batch
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return batch, errBadField("batch", "tag")
		}
		data = data[n:]
		switch num {
		case fieldBatchCommands:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return batch, errBadField("batch", "commands")
			}
			cmd, err := unmarshalBatchCommand(raw)
			if err != nil {
				return batch, err
			}
			batch.Commands = append(batch.Commands, cmd)
			data = data[nn:]
		case fieldBatchIsAtomic:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return batch, errBadField("batch", "is_atomic")
			}
			batch.IsAtomic = v != 0
			data = data[nn:]
		case fieldBatchRaiseOnError:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return batch, errBadField("batch", "raise_on_error")
			}
			batch.RaiseOnError = v != 0
			data = data[nn:]
		case fieldBatchRetryServerError:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return batch, errBadField("batch", "retry_server_error")
			}
			batch.RetryServerError = v != 0
			data = data[nn:]
		case fieldBatchRetryConnectionError:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return batch, errBadField("batch", "retry_connection_error")
			}
			batch.RetryConnectionError = v != 0
			data = data[nn:]
		case fieldBatchTimeoutMs:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return batch, errBadField("batch", "timeout_ms")
			}
			batch.TimeoutMs = v
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return batch, errBadField("batch", "unknown")
			}
			data = data[nn:]
		}
	}
	return batch, nil
}

func marshalBatchCommand(c BatchCommand) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldBatchCmdRequestType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.RequestType))
	for _, arg := range c.ArgsArray {
		b = protowire.AppendTag(b, fieldBatchCmdArgsArray, protowire.BytesType)
		b = protowire.AppendBytes(b, arg)
	}
	return b
}

func unmarshalBatchCommand(data []byte) (BatchCommand, error) {
	var c BatchCommand
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, errBadField("batch command", "tag")
		}
		data = data[n:]
		switch num {
		case fieldBatchCmdRequestType:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return c, errBadField("batch command", "request_type")
			}
			c.RequestType = uint32(v)
			data = data[nn:]
		case fieldBatchCmdArgsArray:
			v, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return c, errBadField("batch command", "args_array")
			}
			c.ArgsArray = append(c.ArgsArray, append([]byte(nil), v...))
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return c, errBadField("batch command", "unknown")
			}
			data = data[nn:]
		}
	}
	return c, nil
}

func marshalScript(s Script) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldScriptHash, protowire.BytesType)
	b = protowire.AppendString(b, s.Hash)
	if s.ArgsVecPointer != 0 {
		b = protowire.AppendTag(b, fieldScriptArgsVecPointer, protowire.VarintType)
		b = protowire.AppendVarint(b, s.ArgsVecPointer)
	} else {
		for _, key := range s.KeysArray {
			b = protowire.AppendTag(b, fieldScriptKeysArray, protowire.BytesType)
			b = protowire.AppendBytes(b, key)
		}
		for _, arg := range s.ArgsArray {
			b = protowire.AppendTag(b, fieldScriptArgsArray, protowire.BytesType)
			b = protowire.AppendBytes(b, arg)
		}
	}
	return b
}

func unmarshalScript(data []byte) (Script, error) {
	var s Script
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return s, errBadField("script", "tag")
		}
		data = data[n:]
		switch num {
		case fieldScriptHash:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("script", "hash")
			}
			s.Hash = v
			data = data[nn:]
		case fieldScriptKeysArray:
			v, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return s, errBadField("script", "keys_array")
			}
			s.KeysArray = append(s.KeysArray, append([]byte(nil), v...))
			data = data[nn:]
		case fieldScriptArgsArray:
			v, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return s, errBadField("script", "args_array")
			}
			s.ArgsArray = append(s.ArgsArray, append([]byte(nil), v...))
			data = data[nn:]
		case fieldScriptArgsVecPointer:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return s, errBadField("script", "args_vec_pointer")
			}
			s.ArgsVecPointer = v
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return s, errBadField("script", "unknown")
			}
			data = data[nn:]
		}
	}
	return s, nil
}

func marshalUpdatePassword(u UpdatePassword) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldUpdatePasswordValue, protowire.BytesType)
	b = protowire.AppendString(b, u.Password)
	if u.ImmediateAuth {
		b = protowire.AppendTag(b, fieldUpdatePasswordImmediate, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

func unmarshalUpdatePassword(data []byte) (UpdatePassword, error) {
	var u UpdatePassword
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return u, errBadField("update password", "tag")
		}
		data = data[n:]
		switch num {
		case fieldUpdatePasswordValue:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return u, errBadField("update password", "password")
			}
			u.Password = v
			data = data[nn:]
		case fieldUpdatePasswordImmediate:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return u, errBadField("update password", "immediate_auth")
			}
			u.ImmediateAuth = v != 0
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return u, errBadField("update password", "unknown")
			}
			data = data[nn:]
		}
	}
	return u, nil
}

func marshalClusterScan(s ClusterScan) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldScanCursor, protowire.BytesType)
	b = protowire.AppendString(b, s.Cursor)
	if s.Match != "" {
		b = protowire.AppendTag(b, fieldScanMatch, protowire.BytesType)
		b = protowire.AppendString(b, s.Match)
	}
	if s.Count != 0 {
		b = protowire.AppendTag(b, fieldScanCount, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Count))
	}
	if s.Type != "" {
		b = protowire.AppendTag(b, fieldScanType, protowire.BytesType)
		b = protowire.AppendString(b, s.Type)
	}
	if s.AllowNonCoveredSlots {
		b = protowire.AppendTag(b, fieldScanAllowNonCoveredSlots, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

func unmarshalClusterScan(data []byte) (ClusterScan, error) {
	var s ClusterScan
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return s, errBadField("cluster scan", "tag")
		}
		data = data[n:]
		switch num {
		case fieldScanCursor:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("cluster scan", "cursor")
			}
			s.Cursor = v
			data = data[nn:]
		case fieldScanMatch:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("cluster scan", "match")
			}
			s.Match = v
			data = data[nn:]
		case fieldScanCount:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return s, errBadField("cluster scan", "count")
			}
			s.Count = int64(v)
			data = data[nn:]
		case fieldScanType:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return s, errBadField("cluster scan", "type")
			}
			s.Type = v
			data = data[nn:]
		case fieldScanAllowNonCoveredSlots:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return s, errBadField("cluster scan", "allow_non_covered_slots")
			}
			s.AllowNonCoveredSlots = v != 0
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return s, errBadField("cluster scan", "unknown")
			}
			data = data[nn:]
		}
	}
	return s, nil
}
