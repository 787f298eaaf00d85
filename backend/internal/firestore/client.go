package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "famsync/backend/pkg/errors"
	"famsync/backend/pkg/logger"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

// Client reads collections through the Firestore REST API. Only the
// backfill utility uses it; the live service receives change payloads
// pushed to it and never queries Firestore.
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	token      string
	logger     *zap.Logger
}

// NewClient creates a Firestore REST client for the given project.
func NewClient(projectID, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		projectID:  projectID,
		token:      token,
		logger:     logger.Named("firestore"),
	}
}

// WithBaseURL overrides the API endpoint (tests, emulator).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// runQuery request/response shapes, trimmed to the fields we use.

type runQueryRequest struct {
	StructuredQuery structuredQuery `json:"structuredQuery"`
}

type structuredQuery struct {
	From  []collectionSelector `json:"from"`
	Where *filter              `json:"where,omitempty"`
}

type collectionSelector struct {
	CollectionID string `json:"collectionId"`
}

type filter struct {
	FieldFilter fieldFilter `json:"fieldFilter"`
}

type fieldFilter struct {
	Field fieldReference `json:"field"`
	Op    string         `json:"op"`
	Value Value          `json:"value"`
}

type fieldReference struct {
	FieldPath string `json:"fieldPath"`
}

type runQueryResult struct {
	Document *Document `json:"document,omitempty"`
}

// ListByFamily returns every document of a collection whose familyId
// field equals the given value.
func (c *Client) ListByFamily(ctx context.Context, collection, familyID string) ([]*Document, error) {
	query := runQueryRequest{
		StructuredQuery: structuredQuery{
			From: []collectionSelector{{CollectionID: collection}},
			Where: &filter{
				FieldFilter: fieldFilter{
					Field: fieldReference{FieldPath: "familyId"},
					Op:    "EQUAL",
					Value: Value{StringValue: &familyID},
				},
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/databases/(default)/documents:runQuery",
		c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFirestoreQueryFailed(collection, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, apperrors.NewFirestoreQueryFailed(collection, resp.StatusCode,
			fmt.Errorf("unexpected response: %s", string(payload)))
	}

	var results []runQueryResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, apperrors.NewFirestoreQueryFailed(collection, resp.StatusCode, err)
	}

	docs := make([]*Document, 0, len(results))
	for _, result := range results {
		// runQuery streams a trailing readTime-only entry with no document
		if result.Document == nil {
			continue
		}
		docs = append(docs, result.Document)
	}

	c.logger.Debug("Fetched collection for backfill",
		zap.String("collection", collection),
		zap.String("family_id", familyID),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}
