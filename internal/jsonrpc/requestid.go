package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestID represents a JSON-RPC ID. The protocol uses integers, but string
// ids sent by foreign clients are echoed back unchanged. A nil *RequestID, or
// one holding no value, encodes as JSON null.
type RequestID struct {
	value interface{}
}

// NewRequestID creates a RequestID from a string or integer. Any other type
// yields a null ID.
func NewRequestID(value interface{}) *RequestID {
	switch v := value.(type) {
	case string:
		return &RequestID{value: v}
	case int:
		return &RequestID{value: int64(v)}
	case int32:
		return &RequestID{value: int64(v)}
	case int64:
		return &RequestID{value: v}
	case float64:
		if v == float64(int64(v)) {
			return &RequestID{value: int64(v)}
		}
		return &RequestID{value: v}
	default:
		return &RequestID{value: nil}
	}
}

// String returns the string representation of the ID, or "null".
func (id *RequestID) String() string {
	if id.IsNil() {
		return "null"
	}

	switch v := id.value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int64 returns the ID as an integer when it holds one.
func (id *RequestID) Int64() (int64, bool) {
	if id == nil {
		return 0, false
	}
	v, ok := id.value.(int64)
	return v, ok
}

// IsNil returns true if the ID is nil/empty.
func (id *RequestID) IsNil() bool {
	if id == nil {
		return true
	}

	return id.value == nil
}

// Equal reports whether two IDs carry the same value. Two null IDs are equal.
func (id *RequestID) Equal(other *RequestID) bool {
	if id.IsNil() || other.IsNil() {
		return id.IsNil() && other.IsNil()
	}
	return id.value == other.value
}

// MarshalJSON implements json.Marshaler
func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id == nil || id.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler. Integer ids stay exact: they
// become int64 when they fit and keep their literal spelling otherwise.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		id.value = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		id.value = str
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("JSON-RPC ID must be a string, number or null, got: %s", string(data))
	}
	switch n, err := num.Int64(); {
	case err == nil:
		id.value = n
	case bytes.ContainsAny(data, ".eE"):
		f, err := num.Float64()
		if err != nil {
			return fmt.Errorf("JSON-RPC ID out of range: %s", string(data))
		}
		id.value = f
	default:
		id.value = num
	}
	return nil
}
