package postgrestest

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mmlnetwork/mmlpack/internal/postgresutil"
)

// NewPool starts a disposable Postgres container, applies migrations
// and returns a pool connected to it. It skips in short mode.
func NewPool(tb testing.TB, ctx context.Context) *pgxpool.Pool {
	tb.Helper()

	connectionString := NewConnectionString(tb, ctx)

	if err := postgresutil.Setup(connectionString); err != nil {
		tb.Fatalf("didn't want %q", err)
	}

	pool, err := postgresutil.NewPool(ctx, connectionString)
	if err != nil {
		tb.Fatalf("didn't want %q", err)
	}
	tb.Cleanup(pool.Close)

	return pool
}

// NewConnectionString starts a disposable Postgres container without
// migrations and returns its connection string. It skips in short mode.
func NewConnectionString(tb testing.TB, ctx context.Context) string {
	tb.Helper()

	if testing.Short() {
		tb.Skip("skipping in short mode")
	}

	const (
		username = "postgres"
		password = "postgres"
		database = "postgres"
	)

	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:17-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     username,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       database,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	}

	c, err := testcontainers.GenericContainer(ctx, req)
	testcontainers.CleanupContainer(tb, c)
	if err != nil {
		tb.Fatalf("didn't want %q", err)
	}

	endpoint, err := c.PortEndpoint(ctx, nat.Port("5432/tcp"), "")
	if err != nil {
		tb.Fatalf("didn't want %q", err)
	}

	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(username, password),
		Host:     endpoint,
		Path:     database,
		RawQuery: "sslmode=disable",
	}).String()
}
