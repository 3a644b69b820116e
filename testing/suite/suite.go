package suite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/monstertoe-backend/internal/repository/storage/sqlite"
)

// redisAddrEnv points the suite at an already running redis instead of a container.
const redisAddrEnv = "MONSTERTOE_TEST_REDIS_ADDR"

const (
	containerTTL = 120
	setupTimeout = 120 * time.Second
)

var redisContainer = dockertest.RunOptions{
	Repository: "redis",
	Tag:        "7-alpine",
}

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

// New gives the test an empty redis database and a debug logger.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	t.Cleanup(cancel)

	addr := os.Getenv(redisAddrEnv)
	if addr == "" {
		addr = runRedis(t)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush redis at %s: %v", addr, err)
	}

	return ctx, &Suite{
		T:       t,
		Logger:  slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Storage: client,
	}
}

// runRedis starts a redis container that is purged with the test and returns its address.
func runRedis(t *testing.T) string {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	pool.MaxWait = setupTimeout

	resource, err := pool.RunWithOptions(&redisContainer, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}

	t.Cleanup(func() {
		if err = pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis: %v", err)
		}
	})

	// hard kill in case the cleanup never runs
	_ = resource.Expire(containerTTL)

	addr := resource.GetHostPort("6379/tcp")

	if err = pool.Retry(func() error {
		probe := redis.NewClient(&redis.Options{Addr: addr})
		defer probe.Close()

		return probe.Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("redis at %s never became ready: %v", addr, err)
	}

	return addr
}

// NewSQLite opens an initialized icon database in a temporary directory.
func NewSQLite(t *testing.T) (context.Context, *sqlite.Storage) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	t.Cleanup(cancel)

	st, err := sqlite.New(filepath.Join(t.TempDir(), "icons.db"))
	if err != nil {
		t.Fatalf("could not open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if err = st.Close(); err != nil {
			t.Errorf("could not close sqlite: %v", err)
		}
	})

	if err = st.Init(ctx); err != nil {
		t.Fatalf("could not init sqlite: %v", err)
	}

	return ctx, st
}
