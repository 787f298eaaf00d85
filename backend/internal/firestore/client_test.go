package firestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListByFamily(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		// runQuery streams one entry per document plus a trailing
		// readTime-only entry
		w.Write([]byte(`[
			{"document": {"name": "projects/p/databases/(default)/documents/tasks/t1",
				"fields": {"familyId": {"stringValue": "fam1"}}}},
			{"document": {"name": "projects/p/databases/(default)/documents/tasks/t2",
				"fields": {"familyId": {"stringValue": "fam1"}}}},
			{"readTime": "2026-03-01T10:00:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient("my-project", "secret-token").WithBaseURL(server.URL)

	docs, err := client.ListByFamily(context.Background(), "tasks", "fam1")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "t1", docs[0].ID())
	assert.Equal(t, "fam1", docs[0].Data()["familyId"])

	assert.Equal(t, "/projects/my-project/databases/(default)/documents:runQuery", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	// the query filters the collection on familyId
	query := gotBody["structuredQuery"].(map[string]interface{})
	from := query["from"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "tasks", from["collectionId"])
	filter := query["where"].(map[string]interface{})["fieldFilter"].(map[string]interface{})
	assert.Equal(t, "familyId", filter["field"].(map[string]interface{})["fieldPath"])
	assert.Equal(t, "EQUAL", filter["op"])
}

func TestClient_ListByFamily_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "permission denied"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("my-project", "bad-token").WithBaseURL(server.URL)

	_, err := client.ListByFamily(context.Background(), "tasks", "fam1")
	assert.Error(t, err)
}
