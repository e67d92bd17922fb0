// Package store is the graph store client: a Neo4j driver wrapper that opens one
// session per round-trip and hands raw records to the graph model.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"wilhelm/internal/apperr"
	"wilhelm/internal/graph"
)

// GraphClient defines the graph store operations the service depends on.
type GraphClient interface {
	VerifyConnectivity(ctx context.Context) error
	RunExpansion(ctx context.Context, seedLabel, relationshipFilter string, minHops, maxHops int) ([]graph.Path, error)
	RunQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	Close(ctx context.Context) error
}

// Config holds the connection settings of a Neo4jClient.
type Config struct {
	URI            string
	Username       string
	Password       string
	Database       string
	ConnectTimeout time.Duration
}

// Neo4jClient implements GraphClient for Neo4j.
type Neo4jClient struct {
	driver neo4j.DriverWithContext
	dbName string
	logger *slog.Logger
}

// NewNeo4jClient creates the driver and verifies that the database is reachable.
func NewNeo4jClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Neo4jClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	c := &Neo4jClient{driver: driver, dbName: cfg.Database, logger: logger}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	logger.Info("connected to neo4j", slog.String("uri", cfg.URI), slog.String("database", cfg.Database))
	return c, nil
}

// VerifyConnectivity checks that the server is reachable and accepts the credentials.
func (c *Neo4jClient) VerifyConnectivity(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to connect to neo4j: %w", classify(err))
	}
	return nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// RunExpansion delegates a bounded traversal to apoc.path.expand. maxHops < 0 means unbounded.
func (c *Neo4jClient) RunExpansion(ctx context.Context, seedLabel, relationshipFilter string, minHops, maxHops int) ([]graph.Path, error) {
	params := map[string]any{
		"seed":    seedLabel,
		"filter":  relationshipFilter,
		"minHops": minHops,
		"maxHops": maxHops,
	}

	records, err := c.read(ctx, expandCypher, params)
	if err != nil {
		return nil, fmt.Errorf("expansion of '%s' failed: %w", seedLabel, err)
	}

	paths := make([]graph.Path, 0, len(records))
	for _, record := range records {
		raw, ok := record.Get("path")
		if !ok {
			continue
		}
		p, ok := raw.(neo4j.Path)
		if !ok {
			return nil, fmt.Errorf("%w: expected a path, got %T", apperr.ErrDataContractViolation, raw)
		}
		paths = append(paths, PathFrom(p))
	}

	c.logger.Debug("expansion round-trip",
		slog.String("seed", seedLabel),
		slog.Int("max_hops", maxHops),
		slog.Int("paths", len(paths)))
	return paths, nil
}

// RunQuery executes a read query and normalizes every returned column.
func (c *Neo4jClient) RunQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	records, err := c.read(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("cypher execution failed: %w", err)
	}
	return Rows(records), nil
}

// read runs cypher in a managed read transaction. The session lives for exactly
// one round-trip and is closed on every exit path.
func (c *Neo4jClient) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.dbName,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, classify(err)
	}
	return result.([]*neo4j.Record), nil
}

const expandCypher = `
	MATCH (node {label: $seed})
	CALL apoc.path.expand(node, $filter, null, $minHops, $maxHops)
	YIELD path
	RETURN path, length(path) AS hops
	ORDER BY hops
`

// classify tags unreachable-server and authentication failures with apperr.ErrConnection.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var connErr *neo4j.ConnectivityError
	if errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperr.ErrConnection, err)
	}
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) && strings.HasPrefix(dbErr.Code, "Neo.ClientError.Security.") {
		return fmt.Errorf("%w: %w", apperr.ErrConnection, err)
	}
	return err
}
