package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestClient starts a throwaway Postgres container, applies the
// embedded migrations through NewClient (exercising the same path
// production uses), and registers cleanup.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("deliberate_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := Config{
		Host: host, Port: port.Int(),
		User: "test", Password: "test", Database: "deliberate_test",
		SSLMode: "disable", MaxOpenConns: 10, MaxIdleConns: 5,
		ConnMaxLifetime: 30 * time.Minute, ConnMaxIdleTime: 5 * time.Minute,
	}

	client, err := NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient_AppliesMigrationsAndPings(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.DB().PingContext(ctx))

	health, err := Health(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Greater(t, health.MaxOpenConns, 0)

	var tableName string
	err = client.DB().QueryRowContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_name = 'sessions'`).Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "sessions", tableName)
}

func TestNewClient_MigrationsAreIdempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// Re-running runMigrations against the same already-migrated
	// database must be a no-op, not an error (migrate.ErrNoChange).
	require.NoError(t, runMigrations(client.DB(), Config{Database: "deliberate_test"}))
	require.NoError(t, client.DB().PingContext(ctx))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg:  Config{Host: "localhost", Port: 5432, User: "test", Password: "test", Database: "test", MaxOpenConns: 10, MaxIdleConns: 5},
		},
		{
			name:    "missing password",
			cfg:     Config{Host: "localhost", Port: 5432, User: "test", Database: "test", MaxOpenConns: 10, MaxIdleConns: 5},
			wantErr: true,
		},
		{
			name:    "idle conns exceed max conns",
			cfg:     Config{Host: "localhost", Port: 5432, User: "test", Password: "test", Database: "test", MaxOpenConns: 5, MaxIdleConns: 10},
			wantErr: true,
		},
		{
			name:    "zero max open conns",
			cfg:     Config{Host: "localhost", Port: 5432, User: "test", Password: "test", Database: "test", MaxOpenConns: 0},
			wantErr: true,
		},
		{
			name:    "negative idle conns",
			cfg:     Config{Host: "localhost", Port: 5432, User: "test", Password: "test", Database: "test", MaxOpenConns: 10, MaxIdleConns: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db.internal", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=db.internal port=5433 user=u password=p dbname=d sslmode=require", cfg.DSN())
}
