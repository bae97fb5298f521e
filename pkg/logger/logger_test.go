package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"

	"portfolio-analytics/internal/config"
)

func TestNew_LevelAndFormat(t *testing.T) {
	l := New(config.LoggerConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithField("portfolio_id", "p1").Info("computed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "computed", entry["message"])
	assert.Equal(t, "p1", entry["portfolio_id"])
}

func TestNew_Fallbacks(t *testing.T) {
	l := New(config.LoggerConfig{Level: "loud", Format: "yaml", Output: "file"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
	assert.Equal(t, os.Stdout, l.Out, "file output without a filename uses stdout")
}

func TestNew_TextFormat(t *testing.T) {
	l := New(config.LoggerConfig{Level: "warn", Format: "text"})
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New(config.LoggerConfig{Level: "info", Output: "file", Filename: path, MaxSize: 1})

	w, ok := l.Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, path, w.Filename)

	l.Info("written")
	require.NoError(t, w.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
