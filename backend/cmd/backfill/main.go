package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
	"famsync/backend/internal/graph"
	syncsvc "famsync/backend/internal/sync"
	"famsync/backend/pkg/config"
	"famsync/backend/pkg/logger"
)

// backfillPacing is the delay between documents, to keep a large replay
// from saturating the graph connection pool.
const backfillPacing = 100 * time.Millisecond

func main() {
	collection := flag.String("collection", "", "Collection to backfill (families|tasks|events|chores|fairPlayResponses|surveys)")
	familyID := flag.String("family", "", "Family ID to backfill")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	if *collection == "" || *familyID == "" {
		log.Fatal("Both -collection and -family are required")
	}

	// Load configuration; missing Neo4j password or Firestore credentials
	// are fatal for the backfill just like for the live service
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := cfg.ValidateBackfill(); err != nil {
		log.Fatal("Failed to validate backfill configuration", zap.Error(err))
	}

	ctx := context.Background()

	conn := graph.NewConnection(cfg)
	defer conn.Close(ctx)
	if err := conn.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}

	service := syncsvc.NewService(conn)
	client := firestore.NewClient(cfg.FirestoreProjectID, cfg.FirestoreAccessToken)

	handler, err := handlerFor(service, *collection)
	if err != nil {
		log.Fatal("Unknown collection", zap.String("collection", *collection), zap.Error(err))
	}

	log.Info("Starting backfill",
		zap.String("collection", *collection),
		zap.String("family_id", *familyID),
	)

	docs, err := client.ListByFamily(ctx, *collection, *familyID)
	if err != nil {
		log.Fatal("Failed to query collection", zap.Error(err))
	}

	synced, failed := 0, 0
	for i, doc := range docs {
		change := &firestore.DocumentChange{
			ID:     doc.ID(),
			Params: map[string]string{"familyId": *familyID},
			After:  doc.Data(),
		}

		result := handler(ctx, change)
		if result.Success {
			synced++
		} else {
			failed++
			log.Warn("Document failed to sync",
				zap.String("doc_id", change.ID),
				zap.String("error", result.Error),
			)
		}

		// Pace the replay; the live path never sees bursts like this
		if i < len(docs)-1 {
			time.Sleep(backfillPacing)
		}
	}

	log.Info("Backfill complete",
		zap.String("collection", *collection),
		zap.Int("documents", len(docs)),
		zap.Int("synced", synced),
		zap.Int("failed", failed),
	)
}

// handlerFor maps a collection name to its sync entry point.
func handlerFor(service *syncsvc.Service, collection string) (func(context.Context, *firestore.DocumentChange) syncsvc.Result, error) {
	switch collection {
	case "families":
		return service.OnFamilyWrite, nil
	case "tasks":
		return service.OnTaskWrite, nil
	case "events":
		return service.OnEventWrite, nil
	case "chores":
		return service.OnChoreCreate, nil
	case "fairPlayResponses":
		return service.OnFairPlayResponseCreate, nil
	case "surveys":
		return service.OnSurveyWrite, nil
	default:
		return nil, fmt.Errorf("no handler for collection %q", collection)
	}
}
