package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetupDefaults(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.StrictParsing)
	assert.Equal(t, 20, cfg.PageLimitCollections)
	assert.Equal(t, int64(1<<20), cfg.MaxSgfBytes)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.ImportRoot)
}

func TestSetupReadsEnvFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SERVER_PORT=9000\nSTRICT_PARSING=false\nCACHE_TTL=15m\nPAGE_LIMIT_COLLECTIONS=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MONGO_DATABASE", "games")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Setup(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.ServerPort)
	assert.False(t, cfg.StrictParsing)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.PageLimitCollections)
	assert.Equal(t, "games", cfg.MongoDatabase)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug")
	require.NotNil(t, log)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	log = NewLogger("not-a-level")
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
}
