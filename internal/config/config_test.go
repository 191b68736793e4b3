package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20*time.Millisecond, cfg.TimeStep)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
time_step: 50
store:
  backend: redis
  redis:
    db: 2
    ttl: 1h
http:
  addr: 127.0.0.1:9000
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.TimeStep, "bare numbers are milliseconds")
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr, "sibling keys keep their defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"backend":   "store: {backend: etcd}",
		"time step": "time_step: 5s",
		"unknown":   "colour: blue",
		"syntax":    "store: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "automata.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestMerge_Nested(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"b": 1, "c": 2}, "d": 3}
	merge(dst, map[string]any{"a": map[string]any{"c": 4}, "e": 5})
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": 4}, "d": 3, "e": 5}, dst)
}
