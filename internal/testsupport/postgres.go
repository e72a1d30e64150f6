// Package testsupport holds test helpers: Prometheus metric assertions and an
// ephemeral PostgreSQL container for the quote store integration tests.
package testsupport

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rafaeljc/cpq/internal/config"
	"github.com/rafaeljc/cpq/internal/database"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresDB       = "cpq_test"
	postgresUser     = "testuser"
	postgresPassword = "testpassword"
)

// PostgresContainer is a running database with the schema migrated and a
// pool connected to it.
type PostgresContainer struct {
	Container        testcontainers.Container
	DB               *pgxpool.Pool
	ConnectionString string
}

// Terminate closes the pool and removes the container.
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	c.DB.Close()
	return c.Container.Terminate(ctx)
}

// StartPostgresContainer starts a throwaway PostgreSQL and migrates it with
// the same golang-migrate path the server uses at startup.
func StartPostgresContainer(ctx context.Context, migrationsDir string) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(postgresDB),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPassword),
		// The server restarts once after initdb, hence two occurrences.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	pool, connStr, err := prepare(ctx, ctr, migrationsDir)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, err
	}

	return &PostgresContainer{Container: ctr, DB: pool, ConnectionString: connStr}, nil
}

func prepare(ctx context.Context, ctr *postgres.PostgresContainer, migrationsDir string) (*pgxpool.Pool, string, error) {
	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get connection string: %w", err)
	}

	cfg := &config.DatabaseConfig{
		URL:             connStr,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MigrationsDir:   migrationsDir,
	}

	if _, err := database.Migrate(cfg, nil); err != nil {
		return nil, "", err
	}

	pool, err := database.NewPostgresPool(ctx, cfg, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, connStr, nil
}
