package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceRoutesHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))
	defer Replace(nil)

	Debug("d")
	Info("i", zap.Int("n", 1))
	Warn("w")
	Error("e", zap.String("k", "v"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "i", entries[1].Message)
	assert.Equal(t, int64(1), entries[1].ContextMap()["n"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestInitFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rasvec.log")
	Init(&Config{Level: "warn", Format: "json", Output: "file", FilePath: path, MaxSize: 1})
	defer Replace(nil)

	Info("dropped")
	Warn("kept", zap.String("tag", "x"))
	Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"kept"`)
	assert.NotContains(t, string(b), "dropped")
}

func TestDefaultLoggerIsLazy(t *testing.T) {
	Replace(nil)
	assert.NotNil(t, L())
}
