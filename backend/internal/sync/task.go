package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
	"famsync/backend/internal/load"
)

// syncTask upserts the Task node with its derived cognitive load and,
// when the assignee is known, links the creating person. A missing
// person only costs the edge: the task itself still syncs.
func (s *Service) syncTask(ctx context.Context, log *zap.Logger, taskID string, doc map[string]interface{}) (string, error) {
	priority := firestore.GetString(doc, "priority", "")
	category := firestore.GetString(doc, "category", "")
	description := firestore.GetString(doc, "description", "")
	cognitiveLoad := load.TaskScore(priority, category, description)

	createdAt, ok := firestore.GetTime(doc, "createdAt")
	if !ok {
		createdAt = time.Now().UTC()
	}
	var completedAt interface{} // stays null unless the document has one
	if t, found := firestore.GetTime(doc, "completedAt"); found {
		completedAt = t.UTC().Format(time.RFC3339)
	}

	_, err := s.exec.ExecuteWrite(ctx, `
		MERGE (t:Task {taskId: $taskId})
		SET t.title = $title,
		    t.description = $description,
		    t.category = $category,
		    t.priority = $priority,
		    t.status = $status,
		    t.familyId = $familyId,
		    t.cognitiveLoad = $cognitiveLoad,
		    t.createdAt = datetime($createdAt),
		    t.completedAt = datetime($completedAt)
	`, map[string]interface{}{
		"taskId":        taskID,
		"title":         firestore.GetString(doc, "title", ""),
		"description":   description,
		"category":      category,
		"priority":      priority,
		"status":        firestore.GetString(doc, "status", ""),
		"familyId":      firestore.GetString(doc, "familyId", ""),
		"cognitiveLoad": cognitiveLoad,
		"createdAt":     createdAt.UTC().Format(time.RFC3339),
		"completedAt":   completedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert task %s: %w", taskID, err)
	}

	assignee := firestore.GetString(doc, "assignee", firestore.GetString(doc, "userId", ""))
	if assignee != "" && assignee != "unknown" {
		records, err := s.exec.ExecuteWrite(ctx, `
			MATCH (p:Person {userId: $assignee})
			MATCH (t:Task {taskId: $taskId})
			MERGE (p)-[:CREATED]->(t)
			RETURN count(*) AS linked
		`, map[string]interface{}{
			"assignee": assignee,
			"taskId":   taskID,
		})
		switch {
		case err != nil:
			log.Warn("Failed to link task creator",
				zap.String("assignee", assignee),
				zap.Error(err),
			)
		case linkCount(records) == 0:
			log.Warn("Task assignee not found in graph, skipping CREATED edge",
				zap.String("assignee", assignee),
			)
		}
	}

	log.Info("Task synced",
		zap.String("task_id", taskID),
		zap.Float64("cognitive_load", cognitiveLoad),
	)
	return ActionSynced, nil
}

// deleteTask removes the Task node and every relationship hanging off it.
func (s *Service) deleteTask(ctx context.Context, log *zap.Logger, taskID string) (string, error) {
	_, err := s.exec.ExecuteWrite(ctx, `
		MATCH (t:Task {taskId: $taskId})
		DETACH DELETE t
	`, map[string]interface{}{
		"taskId": taskID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}

	log.Info("Task deleted", zap.String("task_id", taskID))
	return ActionDeleted, nil
}
