package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChange_DecodesTypedFields(t *testing.T) {
	payload := []byte(`{
		"value": {
			"name": "projects/p/databases/(default)/documents/tasks/task1",
			"fields": {
				"title":       {"stringValue": "Book dentist"},
				"priority":    {"stringValue": "high"},
				"attempts":    {"integerValue": "3"},
				"score":       {"doubleValue": 0.45},
				"done":        {"booleanValue": false},
				"createdAt":   {"timestampValue": "2026-03-01T10:00:00Z"},
				"tags":        {"arrayValue": {"values": [{"stringValue": "health"}, {"stringValue": "kids"}]}},
				"assignment":  {"mapValue": {"fields": {"userId": {"stringValue": "fam1_mama"}}}},
				"completedAt": {"nullValue": null}
			}
		},
		"oldValue": {}
	}`)

	change, err := ParseChange(payload, "task1", map[string]string{"taskId": "task1"})
	require.NoError(t, err)

	assert.Equal(t, "task1", change.ID)
	assert.False(t, change.Deleted())
	assert.Nil(t, change.Before)

	doc := change.After
	assert.Equal(t, "Book dentist", doc["title"])
	assert.Equal(t, int64(3), doc["attempts"])
	assert.Equal(t, 0.45, doc["score"])
	assert.Equal(t, false, doc["done"])
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), doc["createdAt"])
	assert.Equal(t, []interface{}{"health", "kids"}, doc["tags"])
	assert.Equal(t, map[string]interface{}{"userId": "fam1_mama"}, doc["assignment"])
	assert.Nil(t, doc["completedAt"])
}

func TestParseChange_Tombstone(t *testing.T) {
	payload := []byte(`{
		"oldValue": {
			"name": "projects/p/databases/(default)/documents/tasks/task1",
			"fields": {"title": {"stringValue": "Gone"}}
		}
	}`)

	change, err := ParseChange(payload, "task1", nil)
	require.NoError(t, err)

	assert.True(t, change.Deleted())
	assert.Equal(t, "Gone", change.Before["title"])
}

func TestParseChange_IDFallsBackToDocumentName(t *testing.T) {
	payload := []byte(`{
		"value": {
			"name": "projects/p/databases/(default)/documents/families/fam42",
			"fields": {}
		}
	}`)

	change, err := ParseChange(payload, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "fam42", change.ID)
}

func TestParseChange_RejectsMalformedBody(t *testing.T) {
	_, err := ParseChange([]byte(`{"value": [`), "x", nil)
	assert.Error(t, err)
}

func TestGetTime(t *testing.T) {
	native := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		doc      map[string]interface{}
		expected time.Time
		found    bool
	}{
		{"native time", map[string]interface{}{"at": native}, native, true},
		{"rfc3339 string", map[string]interface{}{"at": "2026-01-02T03:04:05Z"}, native, true},
		{"sdk seconds map", map[string]interface{}{"at": map[string]interface{}{"_seconds": int64(1767323045)}}, time.Unix(1767323045, 0).UTC(), true},
		{"plain seconds map", map[string]interface{}{"at": map[string]interface{}{"seconds": float64(1767323045)}}, time.Unix(1767323045, 0).UTC(), true},
		{"absent", map[string]interface{}{}, time.Time{}, false},
		{"garbage string", map[string]interface{}{"at": "yesterday"}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := GetTime(tt.doc, "at")
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.True(t, tt.expected.Equal(got))
			}
		})
	}
}

func TestFieldAccessors_ToleratesMissingAndMistyped(t *testing.T) {
	doc := map[string]interface{}{
		"name":  "Ana",
		"age":   int64(41),
		"score": 0.5,
		"flag":  true,
		"list":  []interface{}{map[string]interface{}{"a": int64(1)}, "not-a-map"},
	}

	assert.Equal(t, "Ana", GetString(doc, "name", "x"))
	assert.Equal(t, "x", GetString(doc, "missing", "x"))
	assert.Equal(t, "x", GetString(doc, "age", "x"))

	assert.Equal(t, int64(41), GetInt(doc, "age", 0))
	assert.Equal(t, int64(0), GetInt(doc, "score", 0))
	assert.Equal(t, 41.0, GetFloat(doc, "age", 0))

	assert.True(t, GetBool(doc, "flag", false))
	assert.True(t, GetBool(doc, "missing", true))

	maps := GetMaps(doc, "list")
	require.Len(t, maps, 1)
	assert.Equal(t, int64(1), maps[0]["a"])

	assert.Nil(t, GetMap(doc, "missing"))
	assert.Nil(t, GetList(doc, "name"))
}
