package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record helpers shared with the sync mappers, which inspect RETURN
// values (typically row counts) to tell a no-op MATCH from a real write.

// Int64Value extracts an int64 column from a record, 0 when absent.
func Int64Value(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

// StringValue extracts a string column from a record, "" when absent.
func StringValue(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// Float64Value extracts a float64 column from a record, 0 when absent.
func Float64Value(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0.0
	}
	if f, ok := val.(float64); ok {
		return f
	}
	if i, ok := val.(int64); ok {
		return float64(i)
	}
	return 0.0
}
