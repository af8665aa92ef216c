package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupoCast/pkg/config"
	"CupoCast/pkg/logger"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Storage.Type = config.StorageSQLite
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func TestProvideHistoryStoreCleanupClosesStore(t *testing.T) {
	ctx := context.Background()
	store, cleanup, err := ProvideHistoryStore(sqliteConfig(t), logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Health(ctx))

	cleanup()
	assert.Error(t, store.Health(ctx))
}

func TestProvideCacheDisabled(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Cache.Enabled = false

	c, cleanup, err := ProvideCache(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)
	require.NotNil(t, cleanup)
	cleanup()
}

func TestInitializeAppFailureReturnsNoApp(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Model.RegressorPath = filepath.Join(t.TempDir(), "missing.json")

	app, cleanup, err := InitializeApp(cfg)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Nil(t, cleanup)
}
