package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:5000", cfg.ListenAddr)
	require.Equal(t, "logs/scan_history.json", cfg.HistoryFile)
	require.Equal(t, "reports", cfg.ReportsDir)
	require.Equal(t, 30*time.Second, cfg.ReconTimeout)
	require.Equal(t, "127.0.0.1", cfg.ProxyHost)
	require.Equal(t, 8080, cfg.ProxyPort)
	require.True(t, cfg.BrowserEnabled)
	require.Empty(t, cfg.BurpAPIKey)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WEBSECTESTER_PROXY_PORT", "9090")
	t.Setenv("WEBSECTESTER_BROWSER_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.ProxyPort)
	require.False(t, cfg.BrowserEnabled)
}
