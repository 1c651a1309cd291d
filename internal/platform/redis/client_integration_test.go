//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampad/internal/platform/config"
	"sampad/pkg/testutil/containers"
)

func TestNew_EmptyURLDisablesRedis(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestClient_HealthAndPoolStats(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()

	client, err := New(ctx, config.RedisConfig{URL: rc.URL, PoolSize: 4}, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(ctx))
	require.NoError(t, client.Set(ctx, "sampad:probe", "1", 0).Err())

	client.RecordPoolStats()
	assert.GreaterOrEqual(t, testutil.ToFloat64(client.metrics.totalConns), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(client.metrics.hits)+testutil.ToFloat64(client.metrics.misses), float64(1))
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "redis://127.0.0.1:1/0", DialTimeout: 200 * time.Millisecond}, prometheus.NewRegistry())
	assert.Error(t, err)
}
