// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wildhaven/menagerie/internal/config"
	"github.com/wildhaven/menagerie/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: All application tables exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS avatars (
			id                    TEXT         PRIMARY KEY,
			name                  VARCHAR(64)  NOT NULL UNIQUE,
			room_id               TEXT         NOT NULL DEFAULT '',
			created_at            TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			strength              INT          NOT NULL DEFAULT 0,
			dexterity             INT          NOT NULL DEFAULT 0,
			constitution          INT          NOT NULL DEFAULT 0,
			intelligence          INT          NOT NULL DEFAULT 0,
			wisdom                INT          NOT NULL DEFAULT 0,
			charisma              INT          NOT NULL DEFAULT 0,
			max_hp                INT          NOT NULL DEFAULT 0,
			status                VARCHAR(16)  NOT NULL DEFAULT 'alive',
			lives                 INT          NOT NULL DEFAULT 3,
			is_defending          BOOLEAN      NOT NULL DEFAULT FALSE,
			is_hidden             BOOLEAN      NOT NULL DEFAULT FALSE,
			advantage_next_attack BOOLEAN      NOT NULL DEFAULT FALSE,
			knocked_out_until     TIMESTAMPTZ,
			combat_cooldown_until TIMESTAMPTZ,
			died_at               TIMESTAMPTZ,
			updated_at            TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			CONSTRAINT avatars_status_check CHECK (status IN ('alive', 'knocked_out', 'dead'))
		);
		CREATE INDEX IF NOT EXISTS idx_avatars_room ON avatars (room_id);

		CREATE TABLE IF NOT EXISTS stat_modifiers (
			id         TEXT         PRIMARY KEY,
			avatar_id  TEXT         NOT NULL REFERENCES avatars (id) ON DELETE CASCADE,
			stat       VARCHAR(32)  NOT NULL,
			value      INT          NOT NULL,
			category   VARCHAR(16)  NOT NULL,
			source     TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_stat_modifiers_avatar_stat
			ON stat_modifiers (avatar_id, stat);

		CREATE TABLE IF NOT EXISTS action_cooldowns (
			avatar_id TEXT         NOT NULL,
			action    VARCHAR(32)  NOT NULL,
			used_at   TIMESTAMPTZ  NOT NULL,
			PRIMARY KEY (avatar_id, action)
		);

		CREATE TABLE IF NOT EXISTS action_log (
			id         TEXT         PRIMARY KEY,
			avatar_id  TEXT         NOT NULL,
			action     VARCHAR(32)  NOT NULL,
			target     TEXT         NOT NULL DEFAULT '',
			result     VARCHAR(32)  NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_action_log_avatar_time
			ON action_log (avatar_id, created_at DESC);
	`

	_, err := pc.RawPool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}

// NewPool starts a migrated test database and returns its raw pool.
// Each call provisions a fresh container, isolating test packages from
// one another.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}
