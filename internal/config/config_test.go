package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubegate"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Scramble.Moves)
	assert.Equal(t, cubegate.DefaultMoveTimeout, cfg.Animation.Timeout)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
animation:
  duration: 400ms
  timeout: 2s
scramble:
  moves: 30
log:
  level: debug
  format: json
targets:
  up:
    title: Docs
    url: https://example.com/docs
  F:
    title: Blog
    url: https://example.com/blog
`))
	require.NoError(t, err)

	assert.Equal(t, 400*time.Millisecond, cfg.Animation.Duration)
	assert.Equal(t, 2*time.Second, cfg.Animation.Timeout)
	assert.Equal(t, 30, cfg.Scramble.Moves)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched sections keep their defaults
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)

	targets := cfg.FaceTargets()
	require.Len(t, targets, 2)
	assert.Equal(t, "Docs", targets[cubegate.Up].Title)
	assert.Equal(t, "https://example.com/blog", targets[cubegate.Front].URL)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad level":     "log:\n  level: loud\n",
		"zero scramble": "scramble:\n  moves: 0\n",
		"bad face":      "targets:\n  top:\n    title: X\n    url: https://example.com\n",
		"bad url":       "targets:\n  up:\n    title: X\n    url: not a url\n",
		"missing title": "targets:\n  up:\n    url: https://example.com\n",
		"bad addr":      "server:\n  addr: nowhere\n",
		"no db path":    "storage:\n  enabled: true\n  path: \"\"\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CUBEGATE_ANIMATION_DURATION": "1s",
		"CUBEGATE_SCRAMBLE_MOVES":     "7",
		"CUBEGATE_LOG_LEVEL":          "WARN",
		"CUBEGATE_STORAGE_ENABLED":    "false",
		"CUBEGATE_SERVER_ADDR":        ":9000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, time.Second, cfg.Animation.Duration)
	assert.Equal(t, 7, cfg.Scramble.Moves)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	require.NoError(t, cfg.Validate())

	env["CUBEGATE_SCRAMBLE_MOVES"] = "many"
	assert.Error(t, Default().ApplyEnv(lookup))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scramble:\n  moves: 12\n"), 0644))
	t.Setenv("CUBEGATE_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Scramble.Moves)
	assert.Equal(t, "json", cfg.Log.Format)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("scramble:\n  mooves: 12\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err, "unknown keys are rejected")
}
