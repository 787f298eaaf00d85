// Package firestore decodes Firestore document-change payloads and, for
// the backfill utility, reads collections through the Firestore REST API.
// The sync engine never writes back to Firestore.
package firestore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Document is a Firestore document as delivered in trigger payloads and
// runQuery responses.
type Document struct {
	Name       string           `json:"name"`
	Fields     map[string]Value `json:"fields"`
	CreateTime *time.Time       `json:"createTime,omitempty"`
	UpdateTime *time.Time       `json:"updateTime,omitempty"`
}

// Exists reports whether the payload carried an actual document. A change
// event whose post-state document is absent is a tombstone.
func (d *Document) Exists() bool {
	return d != nil && (d.Name != "" || len(d.Fields) > 0)
}

// Data decodes the document fields into plain Go values, nil when the
// document is absent. This is the `change.after.data()` equivalent.
func (d *Document) Data() map[string]interface{} {
	if !d.Exists() {
		return nil
	}
	return decodeFields(d.Fields)
}

// ID returns the last path segment of the document name.
func (d *Document) ID() string {
	if d == nil || d.Name == "" {
		return ""
	}
	parts := strings.Split(d.Name, "/")
	return parts[len(parts)-1]
}

// ChangeEvent is the raw Firestore trigger payload: post-state in Value,
// pre-state in OldValue, either of which may be absent.
type ChangeEvent struct {
	Value    *Document `json:"value"`
	OldValue *Document `json:"oldValue"`
}

// DocumentChange is the decoded form handed to the sync handlers.
type DocumentChange struct {
	// ID is the document's natural key, supplied by the delivery context
	// (route parameter), not parsed out of the body.
	ID string

	// Params carries any extra context keys (e.g. familyId for surveys).
	Params map[string]string

	// Before is the pre-change document body, nil on create.
	Before map[string]interface{}

	// After is the post-change document body, nil on delete (tombstone).
	After map[string]interface{}
}

// Deleted reports whether this change is a tombstone.
func (c *DocumentChange) Deleted() bool {
	return c.After == nil
}

// Param returns a context parameter, "" when absent.
func (c *DocumentChange) Param(key string) string {
	if c.Params == nil {
		return ""
	}
	return c.Params[key]
}

// ParseChange decodes a raw trigger payload into a DocumentChange.
func ParseChange(body []byte, id string, params map[string]string) (*DocumentChange, error) {
	var event ChangeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode change payload: %w", err)
	}

	change := &DocumentChange{
		ID:     id,
		Params: params,
		Before: event.OldValue.Data(),
		After:  event.Value.Data(),
	}
	if change.ID == "" {
		change.ID = event.Value.ID()
	}
	if change.ID == "" {
		change.ID = event.OldValue.ID()
	}
	return change, nil
}
