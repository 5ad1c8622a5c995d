package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
admin: owner
moderators:
  - mod1
  - helper@remote.example
storage:
  driver: redis
redis:
  enabled: true
  addr: localhost:6380
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_AppliesDefaults(t *testing.T) {
	cfg, v, err := LoadFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "owner", cfg.Admin)
	assert.Equal(t, []string{"mod1", "helper@remote.example"}, cfg.Moderators)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)

	assert.Equal(t, time.Second, cfg.Dispatch.MentionDelay)
	assert.Equal(t, time.Second, cfg.Dispatch.TimelineDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.DirectMessageDelay)
	assert.Equal(t, 400*time.Millisecond, cfg.Dispatch.FollowDelay)
	assert.Zero(t, cfg.Dispatch.ContinuationTTL)
	assert.Equal(t, "polling", cfg.Bot.Mode)
	assert.Equal(t, 3, cfg.Affinity.LikeLimit)
	assert.Equal(t, "%s", cfg.NicknameFormat)
}

func TestLoadFile_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "missing admin", content: "storage:\n  driver: memory\n"},
		{name: "unknown storage driver", content: "admin: owner\nstorage:\n  driver: etcd\n"},
		{name: "sentry without dsn", content: "admin: owner\nsentry:\n  enabled: true\n"},
		{name: "webhook without url", content: "admin: owner\nbot:\n  mode: webhook\n"},
		{name: "nickname format without verb", content: "admin: owner\nnickname_format: friend\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := LoadFile(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("CITRINE_ADMIN", "boss@remote.example")
	t.Setenv("CITRINE_BOT_TOKEN", "123:abc")

	cfg, _, err := LoadFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "boss@remote.example", cfg.Admin)
	assert.Equal(t, "123:abc", cfg.Bot.Token)
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	_, v, err := LoadFile(path)
	require.NoError(t, err)

	reloaded := make(chan *Config, 4)
	Watch(v, slog.New(slog.NewTextHandler(io.Discard, nil)), func(cfg *Config) {
		reloaded <- cfg
	})

	require.NoError(t, os.WriteFile(path, []byte("admin: newowner\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "newowner", cfg.Admin)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dsn := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable"}.DSN()
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", dsn)
}
