package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalworks/flux-matrix/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  node_id: "node-1"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "node-1", cfg.Server.NodeID)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "flux", cfg.Matrix.Subject)
	assert.Equal(t, 10, cfg.Matrix.PositionSpace)
	assert.Equal(t, 5, cfg.Retention.KeepLatest)
	assert.Equal(t, 5*time.Minute, cfg.Retention.Interval)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  node_id: "node-2"
  port: 9000
  rate_limit: 50
matrix:
  subject: "market-flux"
  position_space: 16
anchors:
  - position: 3
    orbital_radius: 1.5
    judgment_threshold: 0.6
retention:
  enabled: true
  keep_latest: 3
  interval: 30s
logging:
  level: debug
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, float64(50), cfg.Server.RateLimit)
	assert.Equal(t, "market-flux", cfg.Matrix.Subject)
	assert.Equal(t, 16, cfg.Matrix.PositionSpace)
	require.Len(t, cfg.Anchors, 1)
	assert.Equal(t, 3, cfg.Anchors[0].Position)
	assert.Equal(t, 0.6, cfg.Anchors[0].JudgmentThreshold)
	assert.True(t, cfg.Retention.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Retention.Interval)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing node_id", `server: {port: 8090}`},
		{"bad port", `server: {node_id: "n", port: 99999}`},
		{"bad position_space", `
server: {node_id: "n"}
matrix: {position_space: -1}
`},
		{"anchor out of range", `
server: {node_id: "n"}
matrix: {position_space: 5}
anchors:
  - position: 7
    orbital_radius: 1.0
    judgment_threshold: 0.5
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}
