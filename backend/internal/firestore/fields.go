package firestore

import (
	"time"
)

// Accessors over decoded document bodies. Firestore documents are
// schemaless, so every read tolerates a missing or differently-typed
// field and falls back to a default.

// GetString reads a string field with a default.
func GetString(doc map[string]interface{}, key, defaultValue string) string {
	val, ok := doc[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

// GetBool reads a bool field with a default.
func GetBool(doc map[string]interface{}, key string, defaultValue bool) bool {
	val, ok := doc[key]
	if !ok || val == nil {
		return defaultValue
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return defaultValue
}

// GetFloat reads a numeric field as float64 with a default.
func GetFloat(doc map[string]interface{}, key string, defaultValue float64) float64 {
	val, ok := doc[key]
	if !ok || val == nil {
		return defaultValue
	}
	switch n := val.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return defaultValue
}

// GetInt reads a numeric field as int64 with a default.
func GetInt(doc map[string]interface{}, key string, defaultValue int64) int64 {
	val, ok := doc[key]
	if !ok || val == nil {
		return defaultValue
	}
	switch n := val.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return defaultValue
}

// GetTime reads a timestamp-like field: a native time.Time (decoded wire
// timestamps), an RFC3339 string, or a map with epoch seconds (the shape
// Firestore SDK timestamps serialize to). The second return reports
// whether anything usable was found.
func GetTime(doc map[string]interface{}, key string) (time.Time, bool) {
	val, ok := doc[key]
	if !ok || val == nil {
		return time.Time{}, false
	}
	switch t := val.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	case map[string]interface{}:
		for _, secondsKey := range []string{"_seconds", "seconds"} {
			if secs, found := t[secondsKey]; found {
				switch s := secs.(type) {
				case int64:
					return time.Unix(s, 0).UTC(), true
				case float64:
					return time.Unix(int64(s), 0).UTC(), true
				}
			}
		}
	}
	return time.Time{}, false
}

// GetList reads an array field, nil when absent.
func GetList(doc map[string]interface{}, key string) []interface{} {
	val, ok := doc[key]
	if !ok || val == nil {
		return nil
	}
	if list, ok := val.([]interface{}); ok {
		return list
	}
	return nil
}

// GetMaps reads an array-of-maps field, skipping non-map entries.
func GetMaps(doc map[string]interface{}, key string) []map[string]interface{} {
	list := GetList(doc, key)
	if list == nil {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// GetMap reads a nested map field, nil when absent.
func GetMap(doc map[string]interface{}, key string) map[string]interface{} {
	val, ok := doc[key]
	if !ok || val == nil {
		return nil
	}
	if m, ok := val.(map[string]interface{}); ok {
		return m
	}
	return nil
}
