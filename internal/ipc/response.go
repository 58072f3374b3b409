package ipc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// RequestErrorType is the four-way enum carried by a request_error
// response, transmitted as a stable small integer.
type RequestErrorType int32

const (
	RequestErrorUnspecified RequestErrorType = 0
	RequestErrorDisconnect  RequestErrorType = 1
	RequestErrorExecAbort   RequestErrorType = 2
	RequestErrorTimeout     RequestErrorType = 3
)

// Field numbers for Response and its request_error payload.
const (
	fieldRespCallbackIdx = 1
	fieldRespIsPush      = 2
	fieldRespRootSpanPtr = 3

	fieldRespClosingError     = 10
	fieldRespRequestError     = 11
	fieldRespPointer          = 12
	fieldRespConstantResponse = 13

	fieldReqErrType    = 1
	fieldReqErrMessage = 2
)

// ResponseKind discriminates the oneof payload carried by a Response.
type ResponseKind int

const (
	RespKindEmpty ResponseKind = iota
	RespKindClosingError
	RespKindRequestError
	RespKindPointer
	RespKindConstant
)

// RequestError is the typed per-request failure payload.
type RequestError struct {
	Type    RequestErrorType
	Message string
}

// Response carries the originating callback slot id, an is-push flag, and
// exactly one of: a closing error, a typed request error, an opaque
// resp-pointer handle, or the constant "OK" marker. Absence of all four
// means a decoded-null response.
type Response struct {
	CallbackIdx uint32
	IsPush      bool
	RootSpanPtr uint64

	Kind         ResponseKind
	ClosingError string
	RequestError RequestError
	RespPointer  uint64
}

func (m *Response) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldRespCallbackIdx, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.CallbackIdx))
	if m.IsPush {
		b = protowire.AppendTag(b, fieldRespIsPush, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.RootSpanPtr != 0 {
		b = protowire.AppendTag(b, fieldRespRootSpanPtr, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RootSpanPtr)
	}

	switch m.Kind {
	case RespKindClosingError:
		b = protowire.AppendTag(b, fieldRespClosingError, protowire.BytesType)
		b = protowire.AppendString(b, m.ClosingError)
	case RespKindRequestError:
		b = protowire.AppendTag(b, fieldRespRequestError, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalRequestError(m.RequestError))
	case RespKindPointer:
		b = protowire.AppendTag(b, fieldRespPointer, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RespPointer)
	case RespKindConstant:
		b = protowire.AppendTag(b, fieldRespConstantResponse, protowire.BytesType)
		b = protowire.AppendBytes(b, nil)
	case RespKindEmpty:
		// nothing to encode: decoded-null response
	default:
		return nil, fmt.Errorf("ipc: response: unknown kind %d", m.Kind)
	}

	return b, nil
}

func (m *Response) Unmarshal(data []byte) error {
	*m = Response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errBadField("response", "tag")
		}
		data = data[n:]

		switch num {
		case fieldRespCallbackIdx:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("response", "callback_idx")
			}
			m.CallbackIdx = uint32(v)
			data = data[nn:]
		case fieldRespIsPush:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("response", "is_push")
			}
			m.IsPush = v != 0
			data = data[nn:]
		case fieldRespRootSpanPtr:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("response", "root_span_ptr")
			}
			m.RootSpanPtr = v
			data = data[nn:]
		case fieldRespClosingError:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return errBadField("response", "closing_error")
			}
			m.Kind = RespKindClosingError
			m.ClosingError = v
			data = data[nn:]
		case fieldRespRequestError:
			raw, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("response", "request_error")
			}
			reqErr, err := unmarshalRequestError(raw)
			if err != nil {
				return err
			}
			m.Kind = RespKindRequestError
			m.RequestError = reqErr
			data = data[nn:]
		case fieldRespPointer:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return errBadField("response", "resp_pointer")
			}
			m.Kind = RespKindPointer
			m.RespPointer = v
			data = data[nn:]
		case fieldRespConstantResponse:
			_, nn := consumeBytesField(data, typ)
			if nn < 0 {
				return errBadField("response", "constant_response")
			}
			m.Kind = RespKindConstant
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return errBadField("response", "unknown")
			}
			data = data[nn:]
		}
	}
	return nil
}

func marshalRequestError(e RequestError) []byte {
	var b []byte
	if e.Type != RequestErrorUnspecified {
		b = protowire.AppendTag(b, fieldReqErrType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Type))
	}
	if e.Message != "" {
		b = protowire.AppendTag(b, fieldReqErrMessage, protowire.BytesType)
		b = protowire.AppendString(b, e.Message)
	}
	return b
}

func unmarshalRequestError(data []byte) (RequestError, error) {
	var e RequestError
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return e, errBadField("request error", "tag")
		}
		data = data[n:]
		switch num {
		case fieldReqErrType:
			v, nn := protowire.ConsumeVarint(data)
			if nn < 0 {
				return e, errBadField("request error", "type")
			}
			e.Type = RequestErrorType(int32(v))
			data = data[nn:]
		case fieldReqErrMessage:
			v, nn := protowire.ConsumeString(data)
			if nn < 0 {
				return e, errBadField("request error", "message")
			}
			e.Message = v
			data = data[nn:]
		default:
			nn := protowire.ConsumeFieldValue(num, typ, data)
			if nn < 0 {
				return e, errBadField("request error", "unknown")
			}
			data = data[nn:]
		}
	}
	return e, nil
}
