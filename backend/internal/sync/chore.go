package sync

import (
	"context"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
)

// choreParentLoadIncrement is added to each parent's cognitive load for
// every chore their child completes: someone had to assign it, remember
// it and check it got done.
const choreParentLoadIncrement = 0.02

// syncChore credits a completed chore in a single multi-clause
// statement: the child's choresCompleted counter, then every parent
// reachable via PARENT_OF. These are additive updates with no
// deduplication token, so redelivery of the same chore event
// double-counts; the upstream pipe is trusted to deliver once.
func (s *Service) syncChore(ctx context.Context, log *zap.Logger, doc map[string]interface{}) (string, error) {
	assignedTo := firestore.GetString(doc, "assignedTo", "")
	familyID := firestore.GetString(doc, "familyId", "")
	if assignedTo == "" {
		log.Warn("Chore has no assignedTo, skipping")
		return ActionSkipped, nil
	}

	records, err := s.exec.ExecuteWrite(ctx, `
		MATCH (child:Person {name: $assignedTo, familyId: $familyId})
		SET child.choresCompleted = coalesce(child.choresCompleted, 0) + 1,
		    child.lastUpdated = datetime()
		WITH child
		OPTIONAL MATCH (parent:Person)-[:PARENT_OF]->(child)
		FOREACH (p IN CASE WHEN parent IS NULL THEN [] ELSE [parent] END |
			SET p.cognitiveLoad = coalesce(p.cognitiveLoad, 0) + $parentLoad)
		RETURN count(DISTINCT child) AS linked
	`, map[string]interface{}{
		"assignedTo": assignedTo,
		"familyId":   familyID,
		"parentLoad": choreParentLoadIncrement,
	})
	if err != nil {
		// The person may simply not be synced yet; a chore credit is not
		// worth failing the upstream write over.
		log.Warn("Chore sync statement failed, skipping",
			zap.String("assigned_to", assignedTo),
			zap.Error(err),
		)
		return ActionSkipped, nil
	}
	if linkCount(records) == 0 {
		log.Warn("Chore assignee not found in graph, skipping",
			zap.String("assigned_to", assignedTo),
			zap.String("family_id", familyID),
		)
		return ActionSkipped, nil
	}

	log.Info("Chore completion recorded",
		zap.String("assigned_to", assignedTo),
		zap.String("family_id", familyID),
	)
	return ActionSynced, nil
}
