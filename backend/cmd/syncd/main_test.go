package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famsync/backend/internal/firestore"
	syncsvc "famsync/backend/internal/sync"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connected": false})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestChangeHandler_PassesRouteParamAndBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotChange *firestore.DocumentChange
	router := gin.New()
	router.POST("/sync/tasks/:taskId", changeHandler("taskId",
		func(ctx context.Context, change *firestore.DocumentChange) syncsvc.Result {
			gotChange = change
			return syncsvc.Result{Success: true, Action: "synced"}
		}))

	payload := `{"value": {"fields": {"title": {"stringValue": "Book dentist"}}}}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sync/tasks/task42", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotChange)
	assert.Equal(t, "task42", gotChange.ID)
	assert.Equal(t, "Book dentist", gotChange.After["title"])

	var result syncsvc.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "synced", result.Action)
}

func TestChangeHandler_FailedSyncStillAnswersOK(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/sync/tasks/:taskId", changeHandler("taskId",
		func(ctx context.Context, change *firestore.DocumentChange) syncsvc.Result {
			return syncsvc.Result{Success: false, Error: "graph unavailable"}
		}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sync/tasks/task42", bytes.NewBufferString(`{}`))
	router.ServeHTTP(w, req)

	// a sync failure must never look like a delivery failure
	assert.Equal(t, http.StatusOK, w.Code)

	var result syncsvc.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "graph unavailable", result.Error)
}

func TestChangeHandler_MalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/sync/tasks/:taskId", changeHandler("taskId",
		func(ctx context.Context, change *firestore.DocumentChange) syncsvc.Result {
			t.Fatal("handler must not run on malformed payloads")
			return syncsvc.Result{}
		}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sync/tasks/task42", bytes.NewBufferString(`{"value": [`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeHandler_FamilyIDQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotChange *firestore.DocumentChange
	router := gin.New()
	router.POST("/sync/surveys/:surveyId", changeHandler("surveyId",
		func(ctx context.Context, change *firestore.DocumentChange) syncsvc.Result {
			gotChange = change
			return syncsvc.Result{Success: true}
		}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/sync/surveys/sv1?familyId=fam7", bytes.NewBufferString(`{"value": {"fields": {}}}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotChange)
	assert.Equal(t, "fam7", gotChange.Param("familyId"))
}
