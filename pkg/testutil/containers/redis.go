//go:build integration

package containers

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a testcontainers Redis instance.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	return &RedisContainer{Container: container, URL: url}
}

// Client returns a new client for the container. The caller closes it.
func (r *RedisContainer) Client(t *testing.T) *goredis.Client {
	t.Helper()
	opts, err := goredis.ParseURL(r.URL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	return goredis.NewClient(opts)
}

// Flush removes every key.
func (r *RedisContainer) Flush(ctx context.Context, t *testing.T) {
	t.Helper()
	client := r.Client(t)
	defer client.Close()
	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
}
