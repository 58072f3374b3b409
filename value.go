package glide

import "fmt"

// decodeString coerces a decoded native value into a string. A nil value
// (the server's null reply) decodes to "", matching the common case of a
// GET on a missing key.
func decodeString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("glide: unexpected response type %T for string", v)
	}
}

// decodeInt64 coerces a decoded native value into an integer reply (DEL,
// EXISTS, EXPIRE, INCR, PUBLISH receiver counts).
func decodeInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("glide: unexpected response type %T for integer", v)
	}
}

// decodeBool coerces EXPIRE-family 0/1 integer replies into a boolean.
func decodeBool(v any) (bool, error) {
	n, err := decodeInt64(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func toByteSlices(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}
