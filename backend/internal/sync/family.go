package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
)

// syncFamily upserts every family member, the family itself and the
// membership edges, then rebuilds the full parents-by-children
// PARENT_OF cross-product. Three statements per member plus one per
// parent/child pair, each its own implicit transaction.
func (s *Service) syncFamily(ctx context.Context, log *zap.Logger, familyID string, doc map[string]interface{}) (string, error) {
	familyName := firestore.GetString(doc, "name", "")
	members := firestore.GetMaps(doc, "familyMembers")

	type memberInfo struct {
		userID   string
		isParent bool
	}
	var synced []memberInfo

	for _, member := range members {
		userID := firestore.GetString(member, "userId", "")
		if userID == "" {
			log.Warn("Skipping family member without userId")
			continue
		}

		// isParent is taken literally from the document; absence means
		// child. The role field is not consulted for parenthood.
		isParent := firestore.GetBool(member, "isParent", false)
		role := firestore.GetString(member, "role", "child")

		_, err := s.exec.ExecuteWrite(ctx, `
			MERGE (p:Person {userId: $userId})
			SET p.name = $name,
			    p.role = $role,
			    p.isParent = $isParent,
			    p.age = $age,
			    p.familyId = $familyId,
			    p.updatedAt = datetime()
		`, map[string]interface{}{
			"userId":   userID,
			"name":     firestore.GetString(member, "name", ""),
			"role":     role,
			"isParent": isParent,
			"age":      firestore.GetInt(member, "age", 0),
			"familyId": familyID,
		})
		if err != nil {
			return "", fmt.Errorf("failed to upsert person %s: %w", userID, err)
		}

		_, err = s.exec.ExecuteWrite(ctx, `
			MERGE (f:Family {familyId: $familyId})
			SET f.name = $name
		`, map[string]interface{}{
			"familyId": familyID,
			"name":     familyName,
		})
		if err != nil {
			return "", fmt.Errorf("failed to upsert family %s: %w", familyID, err)
		}

		_, err = s.exec.ExecuteWrite(ctx, `
			MATCH (p:Person {userId: $userId})
			MATCH (f:Family {familyId: $familyId})
			MERGE (p)-[:MEMBER_OF]->(f)
		`, map[string]interface{}{
			"userId":   userID,
			"familyId": familyID,
		})
		if err != nil {
			return "", fmt.Errorf("failed to link member %s: %w", userID, err)
		}

		synced = append(synced, memberInfo{userID: userID, isParent: isParent})
	}

	// Recompute the full cross-product on every write. MERGE keeps it
	// idempotent; cost is O(parents x children) per family sync.
	for _, parent := range synced {
		if !parent.isParent {
			continue
		}
		for _, child := range synced {
			if child.isParent {
				continue
			}
			_, err := s.exec.ExecuteWrite(ctx, `
				MATCH (parent:Person {userId: $parentId})
				MATCH (child:Person {userId: $childId})
				MERGE (parent)-[:PARENT_OF]->(child)
			`, map[string]interface{}{
				"parentId": parent.userID,
				"childId":  child.userID,
			})
			if err != nil {
				return "", fmt.Errorf("failed to link parent %s to child %s: %w", parent.userID, child.userID, err)
			}
		}
	}

	log.Info("Family synced",
		zap.String("family_id", familyID),
		zap.Int("members", len(synced)),
	)
	return ActionSynced, nil
}
