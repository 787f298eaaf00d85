package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
	"famsync/backend/internal/graph"
	syncsvc "famsync/backend/internal/sync"
	"famsync/backend/pkg/config"
	"famsync/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting family-graph sync service...")

	// Load configuration; a missing NEO4J_PASSWORD is fatal here, before
	// any change event is accepted
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// The connection is lazy: a failed probe now is only a warning, the
	// write executor reconnects on demand
	conn := graph.NewConnection(cfg)
	defer conn.Close(context.Background())

	if err := conn.Connect(context.Background()); err != nil {
		log.Warn("Neo4j not reachable at startup, will retry on first write", zap.Error(err))
	}

	service := syncsvc.NewService(conn)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"connected": conn.Connected(),
		})
	})

	// Per-collection change webhooks. Each body is a Firestore trigger
	// payload; the natural key rides on the route. Responses are always
	// HTTP 200 with a Result body so a graph failure never reads as a
	// delivery failure upstream.
	hooks := router.Group("/sync")
	{
		hooks.POST("/families/:familyId", changeHandler("familyId", service.OnFamilyWrite))
		hooks.POST("/tasks/:taskId", changeHandler("taskId", service.OnTaskWrite))
		hooks.POST("/events/:eventId", changeHandler("eventId", service.OnEventWrite))
		hooks.POST("/chores/:choreId", changeHandler("choreId", service.OnChoreCreate))
		hooks.POST("/fairplay/:responseId", changeHandler("responseId", service.OnFairPlayResponseCreate))
		hooks.POST("/surveys/:surveyId", changeHandler("surveyId", service.OnSurveyWrite))
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// changeHandler adapts a sync handler to a webhook route: decode the
// trigger payload, thread the route parameter through as the document's
// natural key, and return whatever Result the handler produced.
func changeHandler(idParam string, handle func(context.Context, *firestore.DocumentChange) syncsvc.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		params := map[string]string{idParam: c.Param(idParam)}
		if familyID := c.Query("familyId"); familyID != "" {
			params["familyId"] = familyID
		}

		change, err := firestore.ParseChange(body, c.Param(idParam), params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, handle(c.Request.Context(), change))
	}
}

// requestID tags every request with an id for log correlation
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("ip", c.ClientIP()),
		)
	}
}
