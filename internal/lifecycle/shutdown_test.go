package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdown_StagesRunInOrder(t *testing.T) {
	s := NewShutdown(testLogger())

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	s.Register(StageTelemetry, "sentry", record("sentry"))
	s.Register(StageResources, "redis", record("redis"))
	s.Register(-1, "transport", record("transport"))
	s.Register(StageResources, "nil", nil)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"transport", "redis", "sentry"}, order)
}

func TestShutdown_JoinsErrors(t *testing.T) {
	s := NewShutdown(testLogger())
	errRedis := errors.New("redis close failed")
	errDB := errors.New("db close failed")

	s.Register(StageResources, "redis", func(context.Context) error { return errRedis })
	s.Register(StageResources, "postgres", func(context.Context) error { return errDB })
	s.Register(StageTelemetry, "sentry", func(context.Context) error { return nil })

	err := s.Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errRedis)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "redis: redis close failed")
}

func TestShutdown_PassesContext(t *testing.T) {
	s := NewShutdown(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Register(StageResources, "ctx", func(ctx context.Context) error { return ctx.Err() })

	assert.ErrorIs(t, s.Execute(ctx), context.Canceled)
}
