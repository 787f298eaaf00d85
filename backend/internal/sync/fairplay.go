package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
)

// fairPlayOwnerLoadIncrement is added to the owner's cognitive load for
// every Fair Play card they take on.
const fairPlayOwnerLoadIncrement = 0.05

// syncFairPlayResponse upserts the Responsibility card and links its
// owner in one statement. The card is merged by cardName alone, not
// cardName plus familyId; familyId is written as a plain property, so
// identical card names collide across families. Kept as-is for behavior
// parity with the source data.
func (s *Service) syncFairPlayResponse(ctx context.Context, log *zap.Logger, doc map[string]interface{}) (string, error) {
	cardName := firestore.GetString(doc, "cardName", "")
	if cardName == "" {
		return "", fmt.Errorf("fair play response has no cardName")
	}
	userID := firestore.GetString(doc, "userId", "")
	familyID := firestore.GetString(doc, "familyId", "")

	records, err := s.exec.ExecuteWrite(ctx, `
		MERGE (r:Responsibility {cardName: $cardName})
		SET r.category = $category,
		    r.minimumStandard = $minimumStandard,
		    r.familyId = $familyId
		WITH r
		MATCH (p:Person {userId: $userId})
		MERGE (p)-[:OWNS]->(r)
		SET p.cognitiveLoad = coalesce(p.cognitiveLoad, 0) + $ownerLoad
		RETURN count(*) AS linked
	`, map[string]interface{}{
		"cardName":        cardName,
		"category":        firestore.GetString(doc, "category", ""),
		"minimumStandard": firestore.GetString(doc, "minimumStandard", ""),
		"familyId":        familyID,
		"userId":          userID,
		"ownerLoad":       fairPlayOwnerLoadIncrement,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sync fair play response for %s: %w", cardName, err)
	}
	if linkCount(records) == 0 {
		// The Responsibility merge above still committed; only the owner
		// edge is missing until the person syncs.
		log.Warn("Card owner not found in graph, OWNS edge skipped",
			zap.String("card_name", cardName),
			zap.String("user_id", userID),
		)
	}

	log.Info("Fair Play response synced",
		zap.String("card_name", cardName),
		zap.String("user_id", userID),
	)
	return ActionSynced, nil
}
