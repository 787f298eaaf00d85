package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"famsync/backend/pkg/config"
	apperrors "famsync/backend/pkg/errors"
	"famsync/backend/pkg/logger"
)

// writeRetries is how many times a failed statement is re-attempted
// after the initial try.
const writeRetries = 3

// Connection owns the pooled Neo4j driver. It lazily connects on first
// use and is the only type that touches the driver: every graph mutation
// in the sync engine goes through ExecuteWrite.
type Connection struct {
	uri      string
	user     string
	password string

	poolSize           int
	acquisitionTimeout time.Duration
	txnRetryTime       time.Duration

	mu        sync.RWMutex
	driver    neo4j.DriverWithContext
	connected bool

	// collapses concurrent lazy-connect attempts into one
	connecting singleflight.Group

	logger *zap.Logger
}

// NewConnection creates an unconnected Connection from configuration.
// No I/O happens until Connect or the first ExecuteWrite.
func NewConnection(cfg *config.Config) *Connection {
	return &Connection{
		uri:                cfg.Neo4jURI,
		user:               cfg.Neo4jUser,
		password:           cfg.Neo4jPassword,
		poolSize:           cfg.MaxConnectionPoolSize,
		acquisitionTimeout: cfg.ConnectionAcquisitionTimeout,
		txnRetryTime:       cfg.MaxTransactionRetryTime,
		logger:             logger.Named("graph"),
	}
}

// Connected reports whether the driver has passed a liveness probe.
func (c *Connection) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Connect establishes the pooled driver and verifies liveness with a
// trivial probe query. It is idempotent: if already connected it returns
// immediately. A failed probe leaves the connection unconnected so the
// next operation retries from scratch.
func (c *Connection) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	_, err, _ := c.connecting.Do("connect", func() (interface{}, error) {
		if c.Connected() {
			return nil, nil
		}
		return nil, c.connect(ctx)
	})
	return err
}

func (c *Connection) connect(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(
		c.uri,
		neo4j.BasicAuth(c.user, c.password, ""),
		func(conf *neo4jconfig.Config) {
			conf.MaxConnectionPoolSize = c.poolSize
			conf.ConnectionAcquisitionTimeout = c.acquisitionTimeout
			conf.MaxTransactionRetryTime = c.txnRetryTime
		},
	)
	if err != nil {
		return apperrors.NewGraphConnectionFailed(c.uri, err)
	}

	// Liveness probe before the connection is handed to any mapper
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	result, err := session.Run(ctx, "RETURN 1", nil)
	if err == nil {
		_, err = result.Consume(ctx)
	}
	session.Close(ctx)
	if err != nil {
		driver.Close(ctx)
		return apperrors.NewGraphConnectionFailed(c.uri, err)
	}

	c.mu.Lock()
	c.driver = driver
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("Connected to Neo4j", zap.String("uri", c.uri))
	return nil
}

// Close tears down the driver pool and resets the connection state.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	c.connected = false
	return err
}

// ExecuteWrite runs one parameterized write statement against the graph.
// Each call opens its own write session, so each statement is its own
// implicit transaction; mappers that issue several statements get no
// atomicity across them and rely on merge-by-key idempotence instead.
//
// On failure the statement is retried up to writeRetries times with
// exponential backoff (2s, 4s, 8s), reconnecting lazily before each
// attempt. After exhausting retries the last error is returned.
func (c *Connection) ExecuteWrite(ctx context.Context, cypher string, params map[string]interface{}) ([]*neo4j.Record, error) {
	var lastErr error

	for attempt := 0; attempt <= writeRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			c.logger.Warn("Retrying graph write",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("write cancelled during backoff: %w", ctx.Err())
			}
		}

		if err := c.Connect(ctx); err != nil {
			lastErr = err
			continue
		}

		records, err := c.run(ctx, cypher, params)
		if err == nil {
			return records, nil
		}
		lastErr = err
	}

	return nil, apperrors.NewGraphWriteFailed(writeRetries+1, lastErr)
}

// run executes a single statement in a fresh write session. The session
// is always released, and records are collected before release so the
// caller never holds a live cursor on a closed session.
func (c *Connection) run(ctx context.Context, cypher string, params map[string]interface{}) ([]*neo4j.Record, error) {
	c.mu.RLock()
	driver := c.driver
	c.mu.RUnlock()
	if driver == nil {
		return nil, apperrors.NewGraphConnectionFailed(c.uri, fmt.Errorf("driver not initialized"))
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect records: %w", err)
	}
	return records, nil
}

// backoffDelay returns 2^attempt seconds: attempt 1 waits 2s, attempt 2
// waits 4s, attempt 3 waits 8s.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
