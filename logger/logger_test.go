package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	log, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log, err = New(Config{Level: "loud"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNew_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")

	log, err := New(Config{Level: "info", OutputFile: path, MaxSize: 1})
	require.NoError(t, err)

	log.WithField("order", "abc").Info("order patched")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "order patched")
	assert.Contains(t, string(content), "order=abc")
}
