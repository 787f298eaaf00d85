package firestore

import (
	"strconv"
	"time"
)

// Value is one typed Firestore field value as it appears on the wire in
// trigger payloads and REST responses. Exactly one of the pointers is set.
type Value struct {
	NullValue      *string    `json:"nullValue,omitempty"`
	BooleanValue   *bool      `json:"booleanValue,omitempty"`
	IntegerValue   *string    `json:"integerValue,omitempty"` // int64 encoded as a string on the wire
	DoubleValue    *float64   `json:"doubleValue,omitempty"`
	TimestampValue *time.Time `json:"timestampValue,omitempty"`
	StringValue    *string    `json:"stringValue,omitempty"`
	ReferenceValue *string    `json:"referenceValue,omitempty"`
	ArrayValue     *Array     `json:"arrayValue,omitempty"`
	MapValue       *Map       `json:"mapValue,omitempty"`
}

// Array is a Firestore array value
type Array struct {
	Values []Value `json:"values,omitempty"`
}

// Map is a Firestore map value
type Map struct {
	Fields map[string]Value `json:"fields,omitempty"`
}

// Native converts a wire value into a plain Go value: string, bool,
// int64, float64, time.Time, []interface{}, map[string]interface{} or nil.
func (v Value) Native() interface{} {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.IntegerValue != nil:
		if i, err := strconv.ParseInt(*v.IntegerValue, 10, 64); err == nil {
			return i
		}
		return nil
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.TimestampValue != nil:
		return *v.TimestampValue
	case v.ReferenceValue != nil:
		return *v.ReferenceValue
	case v.ArrayValue != nil:
		out := make([]interface{}, 0, len(v.ArrayValue.Values))
		for _, item := range v.ArrayValue.Values {
			out = append(out, item.Native())
		}
		return out
	case v.MapValue != nil:
		return decodeFields(v.MapValue.Fields)
	default:
		// nullValue or an empty value
		return nil
	}
}

func decodeFields(fields map[string]Value) map[string]interface{} {
	if fields == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(fields))
	for name, val := range fields {
		out[name] = val.Native()
	}
	return out
}
