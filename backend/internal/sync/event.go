package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
)

// syncEvent upserts the Event node, links the organizer when known, and
// merges one PERFORMED_ROLE edge per specific role in each role
// assignment. Role edges are keyed by (roleName, eventId) so re-syncing
// the same event never duplicates them; each failed role edge is logged
// and skipped without aborting the rest.
func (s *Service) syncEvent(ctx context.Context, log *zap.Logger, eventID string, doc map[string]interface{}) (string, error) {
	var startTime, endTime interface{} // null when the document has none
	if t, ok := firestore.GetTime(doc, "startTime"); ok {
		startTime = t.UTC().Format(time.RFC3339)
	}
	if t, ok := firestore.GetTime(doc, "endTime"); ok {
		endTime = t.UTC().Format(time.RFC3339)
	}

	params := map[string]interface{}{
		"eventId":   eventID,
		"title":     firestore.GetString(doc, "title", ""),
		"startTime": startTime,
		"endTime":   endTime,
		"source":    firestore.GetString(doc, "source", ""),
		"familyId":  firestore.GetString(doc, "familyId", ""),
	}

	_, err := s.exec.ExecuteWrite(ctx, `
		MERGE (e:Event {eventId: $eventId})
		SET e.title = $title,
		    e.startTime = datetime($startTime),
		    e.endTime = datetime($endTime),
		    e.source = $source,
		    e.familyId = $familyId
	`, params)
	if err != nil {
		return "", fmt.Errorf("failed to upsert event %s: %w", eventID, err)
	}

	organizer := firestore.GetString(doc, "userId", "")
	if organizer != "" && organizer != "unknown" {
		records, err := s.exec.ExecuteWrite(ctx, `
			MATCH (p:Person {userId: $userId})
			MATCH (e:Event {eventId: $eventId})
			MERGE (p)-[:ORGANIZES]->(e)
			RETURN count(*) AS linked
		`, map[string]interface{}{
			"userId":  organizer,
			"eventId": eventID,
		})
		switch {
		case err != nil:
			log.Warn("Failed to link event organizer",
				zap.String("user_id", organizer),
				zap.Error(err),
			)
		case linkCount(records) == 0:
			log.Warn("Event organizer not found in graph, skipping ORGANIZES edge",
				zap.String("user_id", organizer),
			)
		}
	}

	for _, assignment := range firestore.GetMaps(doc, "roleAssignments") {
		s.syncRoleAssignment(ctx, log, eventID, assignment)
	}

	log.Info("Event synced", zap.String("event_id", eventID))
	return ActionSynced, nil
}

// syncRoleAssignment merges the PERFORMED_ROLE edges for one assignment.
func (s *Service) syncRoleAssignment(ctx context.Context, log *zap.Logger, eventID string, assignment map[string]interface{}) {
	userID := firestore.GetString(assignment, "userId",
		firestore.GetString(assignment, "assignedTo", ""))
	if userID == "" || userID == "unknown" {
		return
	}

	assignedBy := firestore.GetString(assignment, "assignedBy", "")
	autoAssigned := firestore.GetBool(assignment, "autoAssigned", false)
	// confirmed defaults to true unless the document explicitly says no
	confirmed := firestore.GetBool(assignment, "confirmed", true)

	for _, raw := range firestore.GetList(assignment, "specificRoles") {
		roleName, ok := raw.(string)
		if !ok || roleName == "" {
			continue
		}

		records, err := s.exec.ExecuteWrite(ctx, `
			MATCH (p:Person {userId: $userId})
			MATCH (e:Event {eventId: $eventId})
			MERGE (p)-[r:PERFORMED_ROLE {roleName: $roleName, eventId: $eventId}]->(e)
			SET r.cognitiveLoadWeight = $weight,
			    r.category = $category,
			    r.assignedBy = $assignedBy,
			    r.autoAssigned = $autoAssigned,
			    r.confirmed = $confirmed,
			    r.updatedAt = datetime()
			RETURN count(*) AS linked
		`, map[string]interface{}{
			"userId":       userID,
			"eventId":      eventID,
			"roleName":     roleName,
			"weight":       RoleWeight(roleName),
			"category":     RoleCategory(roleName),
			"assignedBy":   assignedBy,
			"autoAssigned": autoAssigned,
			"confirmed":    confirmed,
		})
		switch {
		case err != nil:
			log.Warn("Failed to sync role assignment",
				zap.String("user_id", userID),
				zap.String("role", roleName),
				zap.Error(err),
			)
		case linkCount(records) == 0:
			log.Warn("Role performer not found in graph, skipping PERFORMED_ROLE edge",
				zap.String("user_id", userID),
				zap.String("role", roleName),
			)
		}
	}
}

// deleteEvent removes the Event node and all its relationships.
func (s *Service) deleteEvent(ctx context.Context, log *zap.Logger, eventID string) (string, error) {
	_, err := s.exec.ExecuteWrite(ctx, `
		MATCH (e:Event {eventId: $eventId})
		DETACH DELETE e
	`, map[string]interface{}{
		"eventId": eventID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}

	log.Info("Event deleted", zap.String("event_id", eventID))
	return ActionDeleted, nil
}
