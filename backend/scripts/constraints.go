// Bootstrap for the graph schema: unique constraints on every natural
// key the sync engine merges by, plus lookup indexes for the non-key
// match paths (chore sync matches Person by name+familyId).
//
// Run once against a fresh database:
//
//	go run backend/scripts/constraints.go
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"famsync/backend/pkg/config"
	"famsync/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Creating graph constraints...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	if err := createConstraints(ctx, driver, log); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}
	if err := createIndexes(ctx, driver, log); err != nil {
		log.Warn("Failed to create some indexes (may already exist)", zap.Error(err))
	}

	log.Info("Graph schema bootstrap complete")
}

// createConstraints creates unique constraints for the merge keys
func createConstraints(ctx context.Context, driver neo4j.DriverWithContext, log *zap.Logger) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT person_user_id_unique IF NOT EXISTS FOR (p:Person) REQUIRE p.userId IS UNIQUE",
		"CREATE CONSTRAINT family_id_unique IF NOT EXISTS FOR (f:Family) REQUIRE f.familyId IS UNIQUE",
		"CREATE CONSTRAINT task_id_unique IF NOT EXISTS FOR (t:Task) REQUIRE t.taskId IS UNIQUE",
		"CREATE CONSTRAINT event_id_unique IF NOT EXISTS FOR (e:Event) REQUIRE e.eventId IS UNIQUE",

		// Responsibility is merged by cardName alone; this constraint
		// matches the merge key, collisions across families included
		"CREATE CONSTRAINT responsibility_card_unique IF NOT EXISTS FOR (r:Responsibility) REQUIRE r.cardName IS UNIQUE",

		// Survey-subgraph nodes are keyed by id plus familyId
		"CREATE CONSTRAINT survey_key_unique IF NOT EXISTS FOR (s:Survey) REQUIRE (s.surveyId, s.familyId) IS UNIQUE",
		"CREATE CONSTRAINT question_key_unique IF NOT EXISTS FOR (q:Question) REQUIRE (q.questionKey, q.familyId) IS UNIQUE",
		"CREATE CONSTRAINT survey_response_key_unique IF NOT EXISTS FOR (sr:SurveyResponse) REQUIRE (sr.responseId, sr.familyId) IS UNIQUE",
	}

	var failed []string
	for _, constraint := range constraints {
		if _, err := session.Run(ctx, constraint, nil); err != nil {
			log.Warn("Constraint creation failed", zap.String("constraint", constraint), zap.Error(err))
			failed = append(failed, constraint)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d constraints failed: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// createIndexes creates lookup indexes for non-key match paths
func createIndexes(ctx context.Context, driver neo4j.DriverWithContext, log *zap.Logger) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	indexes := []string{
		// Chore sync matches children by display name within a family
		"CREATE INDEX person_name_family IF NOT EXISTS FOR (p:Person) ON (p.name, p.familyId)",
		// Dashboards filter everything by family
		"CREATE INDEX task_family IF NOT EXISTS FOR (t:Task) ON (t.familyId)",
		"CREATE INDEX event_family IF NOT EXISTS FOR (e:Event) ON (e.familyId)",
	}

	var failed []string
	for _, index := range indexes {
		if _, err := session.Run(ctx, index, nil); err != nil {
			log.Warn("Index creation failed", zap.String("index", index), zap.Error(err))
			failed = append(failed, index)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d indexes failed: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}
