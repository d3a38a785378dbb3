package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Backend, BackendJSON)
	assert.Equal(t, cfg.FetchTimeout.Std(), 3*time.Second)
	assert.Equal(t, cfg.OpenGraphTimeout.Std(), 10*time.Second)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
}

func TestLoadConfig_FillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{"backend":"sqlite","fetchTimeout":"1500ms"}`), 0644))

	cfg, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Backend, BackendSQLite)
	assert.Equal(t, cfg.FetchTimeout.Std(), 1500*time.Millisecond)
	assert.Equal(t, cfg.LogLevel, "info")
	assert.Equal(t, cfg.RefreshConcurrency, 8)
	assert.Assert(t, cfg.SQLitePath != "")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{"fetchTimeout":"soon"}`), 0644))

	_, err := LoadConfig(path)
	assert.Assert(t, err != nil)
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Duration(90 * time.Second))
	assert.NilError(t, err)
	assert.Equal(t, string(data), `"1m30s"`)

	var d Duration
	assert.NilError(t, json.Unmarshal(data, &d))
	assert.Equal(t, d.Std(), 90*time.Second)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BMP_BACKEND", "redis")
	t.Setenv("BMP_REDIS_ADDR", "cache:6379")
	t.Setenv("BMP_REDIS_DB", "2")
	t.Setenv("BMP_PRETTY_LOG", "false")
	t.Setenv("BMP_FETCH_TIMEOUT", "250ms")

	cfg := DefaultConfig()
	assert.NilError(t, ApplyEnv(&cfg))

	assert.Equal(t, cfg.Backend, BackendRedis)
	assert.Equal(t, cfg.Redis.Addr, "cache:6379")
	assert.Equal(t, cfg.Redis.DB, 2)
	assert.Equal(t, cfg.PrettyLog(), false)
	assert.Equal(t, cfg.FetchTimeout.Std(), 250*time.Millisecond)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "redis db", key: "BMP_REDIS_DB", val: "two"},
		{name: "pretty log", key: "BMP_PRETTY_LOG", val: "maybe"},
		{name: "fetch timeout", key: "BMP_FETCH_TIMEOUT", val: "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			cfg := DefaultConfig()
			assert.Assert(t, ApplyEnv(&cfg) != nil)
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	assert.NilError(t, os.WriteFile(envFile, []byte("BMP_LISTEN_ADDR=0.0.0.0:9000\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("BMP_LISTEN_ADDR") })

	cfg, err := Load(filepath.Join(dir, "config.json"), envFile)
	assert.NilError(t, err)
	assert.Equal(t, cfg.ListenAddr, "0.0.0.0:9000")
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "config.json"), filepath.Join(dir, "absent.env"))
	assert.NilError(t, err)
}
