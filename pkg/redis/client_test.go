package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/citrine-bot/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	before := counter(t, redisRequestsTotal.WithLabelValues("ping"))

	rdb, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	assert.Equal(t, before+1, counter(t, redisRequestsTotal.WithLabelValues("ping")))
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := New(ctx, config.RedisConfig{Addr: addr, MaxRetries: -1}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestMetricsHook_MissIsNotAnError(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	errorsBefore := counter(t, redisErrorsTotal.WithLabelValues("get"))
	requestsBefore := counter(t, redisRequestsTotal.WithLabelValues("get"))

	_, err = rdb.Get(ctx, "missing").Result()
	require.ErrorIs(t, err, goredis.Nil)

	assert.Equal(t, requestsBefore+1, counter(t, redisRequestsTotal.WithLabelValues("get")))
	assert.Equal(t, errorsBefore, counter(t, redisErrorsTotal.WithLabelValues("get")))
}

func TestMetricsHook_Pipeline(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	before := counter(t, redisRequestsTotal.WithLabelValues("pipeline"))

	pipe := rdb.TxPipeline()
	pipe.Set(context.Background(), "a", "1", 0)
	pipe.Set(context.Background(), "b", "2", 0)
	_, err = pipe.Exec(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before+1, counter(t, redisRequestsTotal.WithLabelValues("pipeline")))
	assert.Equal(t, "1", mustGet(t, mr, "a"))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()

	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func counter(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var out dto.Metric
	require.NoError(t, c.Write(&out))
	return out.GetCounter().GetValue()
}
