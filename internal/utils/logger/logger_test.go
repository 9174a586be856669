package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.log")
	cfg := DefaultConfig()
	cfg.LogFile = path
	cfg.Development = true

	l, err := New(cfg)
	require.NoError(t, err)

	l.WithTrade("PUMP_FUN", "buy", "mint").Info("quote ready")
	l.WithOperation("send").Warn("confirmation timeout")
	done := l.TrackPerformance("quote")
	done()
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"market":"PUMP_FUN"`)
	assert.Contains(t, content, `"correlation_id"`)
	assert.Contains(t, content, "confirmation timeout")
}

func TestNewWithoutFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = ""

	l, err := New(cfg)
	require.NoError(t, err)
	l.WithComponent("sender").Debug("not printed at info level")
	l.WithTransaction("5ig").Info("sent")
}

func TestNewNilConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	l, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "trader.log", l.config.LogFile)
}
