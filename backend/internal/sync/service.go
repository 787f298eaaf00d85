// Package sync maps family-organizer document changes onto the Neo4j
// property graph. Every mapper is a sequence of single-statement
// idempotent upserts keyed by natural business ids; there is no
// multi-statement transaction, so a failure partway through a mapper
// leaves a partial state that re-syncing the same document completes.
package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
	"famsync/backend/internal/graph"
	apperrors "famsync/backend/pkg/errors"
	"famsync/backend/pkg/logger"
)

// Executor runs one parameterized write statement against the graph.
// Satisfied by *graph.Connection; tests substitute a recorder.
type Executor interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]interface{}) ([]*neo4j.Record, error)
}

// Result is the contract returned to the change-delivery pipe. A sync
// failure is reported in the body, never as an error: a broken graph
// write must not block or roll back the upstream document write.
type Result struct {
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Actions reported in Result.Action.
const (
	ActionSynced  = "synced"
	ActionDeleted = "deleted"
	ActionSkipped = "skipped"
)

// Service holds the sync engine's dependencies. One instance is built at
// process start and shared by all handlers; the only mutable state is
// the pooled connection behind the Executor.
type Service struct {
	exec   Executor
	logger *zap.Logger
}

// NewService creates a sync service on top of a write executor.
func NewService(exec Executor) *Service {
	return &Service{
		exec:   exec,
		logger: logger.Named("sync"),
	}
}

// OnFamilyWrite syncs a family document: one Person per member, the
// Family node, MEMBER_OF edges, and the parents-by-children PARENT_OF
// cross-product.
func (s *Service) OnFamilyWrite(ctx context.Context, change *firestore.DocumentChange) Result {
	return s.guard(ctx, "families", change.ID, func(ctx context.Context, log *zap.Logger) (string, error) {
		if change.ID == "" {
			return "", apperrors.NewMissingDocumentID("familyId")
		}
		if change.Deleted() {
			// Family deletion is not mirrored into the graph; members may
			// still be referenced by tasks, events and surveys.
			log.Warn("Ignoring family tombstone")
			return ActionSkipped, nil
		}
		return s.syncFamily(ctx, log, change.ID, change.After)
	})
}

// OnTaskWrite syncs a task document, or detach-deletes the Task node on
// a tombstone.
func (s *Service) OnTaskWrite(ctx context.Context, change *firestore.DocumentChange) Result {
	return s.guard(ctx, "tasks", change.ID, func(ctx context.Context, log *zap.Logger) (string, error) {
		if change.ID == "" {
			return "", apperrors.NewMissingDocumentID("taskId")
		}
		if change.Deleted() {
			return s.deleteTask(ctx, log, change.ID)
		}
		return s.syncTask(ctx, log, change.ID, change.After)
	})
}

// OnEventWrite syncs an event document, or detach-deletes the Event node
// on a tombstone.
func (s *Service) OnEventWrite(ctx context.Context, change *firestore.DocumentChange) Result {
	return s.guard(ctx, "events", change.ID, func(ctx context.Context, log *zap.Logger) (string, error) {
		if change.ID == "" {
			return "", apperrors.NewMissingDocumentID("eventId")
		}
		if change.Deleted() {
			return s.deleteEvent(ctx, log, change.ID)
		}
		return s.syncEvent(ctx, log, change.ID, change.After)
	})
}

// OnChoreCreate credits a completed chore: the child's counter and each
// parent's cognitive load. Create-only collection, so tombstones are
// ignored.
func (s *Service) OnChoreCreate(ctx context.Context, change *firestore.DocumentChange) Result {
	return s.guard(ctx, "chores", change.ID, func(ctx context.Context, log *zap.Logger) (string, error) {
		if change.Deleted() {
			return ActionSkipped, nil
		}
		return s.syncChore(ctx, log, change.After)
	})
}

// OnFairPlayResponseCreate syncs a Fair Play card claim.
func (s *Service) OnFairPlayResponseCreate(ctx context.Context, change *firestore.DocumentChange) Result {
	return s.guard(ctx, "fairPlayResponses", change.ID, func(ctx context.Context, log *zap.Logger) (string, error) {
		if change.Deleted() {
			return ActionSkipped, nil
		}
		return s.syncFairPlayResponse(ctx, log, change.After)
	})
}

// OnSurveyWrite syncs a survey document: per-member load scores, the
// Survey node, and the response/question subgraph.
func (s *Service) OnSurveyWrite(ctx context.Context, change *firestore.DocumentChange) Result {
	return s.guard(ctx, "surveys", change.ID, func(ctx context.Context, log *zap.Logger) (string, error) {
		if change.ID == "" {
			return "", apperrors.NewMissingDocumentID("surveyId")
		}
		if change.Deleted() {
			// Survey subgraphs are append-mostly: never deleted here.
			log.Warn("Ignoring survey tombstone")
			return ActionSkipped, nil
		}
		familyID := change.Param("familyId")
		if familyID == "" {
			familyID = firestore.GetString(change.After, "familyId", "")
		}
		return s.syncSurvey(ctx, log, change.ID, familyID, change.After)
	})
}

// guard is the public boundary: it converts every mapper error, and any
// panic, into a Result so nothing propagates to the delivery pipe.
func (s *Service) guard(ctx context.Context, collection, docID string, fn func(context.Context, *zap.Logger) (string, error)) (result Result) {
	log := s.logger.With(
		zap.String("collection", collection),
		zap.String("doc_id", docID),
		zap.String("sync_id", uuid.NewString()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Sync handler panicked", zap.Any("panic", r))
			result = Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	action, err := fn(ctx, log)
	if err != nil {
		log.Error("Sync failed", zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}

	log.Debug("Sync completed", zap.String("action", action))
	return Result{Success: true, Action: action}
}

// linkCount reads the row count a relationship statement RETURNs; zero
// means the MATCH found no anchor node (typically a person not yet
// synced), which callers treat as a warning, not a failure.
func linkCount(records []*neo4j.Record) int64 {
	if len(records) == 0 {
		return 0
	}
	return graph.Int64Value(records[0], "linked")
}
