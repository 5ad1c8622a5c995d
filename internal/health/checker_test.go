package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChecker_OrderAndStatus(t *testing.T) {
	checker := NewChecker(testLogger(), time.Second)
	checker.AddCheck("b", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("a", CheckFunc(func(context.Context) error { return errors.New("down") }))
	checker.AddCheck("", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("nil", nil)

	report := checker.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, []Component{
		{Name: "b", Status: "OK"},
		{Name: "a", Status: "down"},
	}, report.Components)
}

func TestChecker_ReplaceKeepsPosition(t *testing.T) {
	checker := NewChecker(testLogger(), time.Second)
	checker.AddCheck("first", CheckFunc(func(context.Context) error { return errors.New("x") }))
	checker.AddCheck("second", CheckFunc(func(context.Context) error { return nil }))
	checker.AddCheck("first", CheckFunc(func(context.Context) error { return nil }))

	report := checker.Check(context.Background())

	assert.True(t, report.Healthy)
	require.Len(t, report.Components, 2)
	assert.Equal(t, "first", report.Components[0].Name)
}

func TestChecker_Timeout(t *testing.T) {
	checker := NewChecker(testLogger(), 10*time.Millisecond)
	checker.AddCheck("slow", CheckFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	report := checker.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Components[0].Status)
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, NewRedisChecker(rdb).HealthCheck(context.Background()))

	var nilChecker *RedisChecker
	assert.ErrorIs(t, nilChecker.HealthCheck(context.Background()), redis.ErrClosed)
}

func TestTelegramChecker_Uninitialized(t *testing.T) {
	assert.Error(t, NewTelegramChecker(nil).HealthCheck(context.Background()))
	assert.Error(t, NewDBChecker(nil).HealthCheck(context.Background()))
}

func TestHandler(t *testing.T) {
	var healthy atomic.Bool
	checker := NewChecker(testLogger(), time.Second)
	checker.AddCheck("redis", CheckFunc(func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("connection refused")
	}))

	srv := httptest.NewServer(NewHandler(checker, testLogger()))
	t.Cleanup(srv.Close)

	tests := []struct {
		name       string
		path       string
		healthy    bool
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", path: "/livez", healthy: false, wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "healthy", path: "/healthz", healthy: true, wantStatus: http.StatusOK, wantBody: `"healthy":true`},
		{name: "unhealthy", path: "/healthz", healthy: false, wantStatus: http.StatusServiceUnavailable, wantBody: "connection refused"},
		{name: "metrics", path: "/metrics", healthy: true, wantStatus: http.StatusOK, wantBody: "go_goroutines"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			healthy.Store(tc.healthy)

			resp, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.True(t, strings.Contains(string(body), tc.wantBody), string(body))
		})
	}
}

func TestHandler_ReportShape(t *testing.T) {
	checker := NewChecker(testLogger(), time.Second)
	checker.AddCheck("postgres", CheckFunc(func(context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	NewHandler(checker, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, Report{Healthy: true, Components: []Component{{Name: "postgres", Status: "OK"}}}, report)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
