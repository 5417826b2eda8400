package config_test

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/walletport/backup-sdk/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BACKUP_DATADIR", "")
		cfg, err := config.Load()
		require.NoError(t, err)

		require.NotEmpty(t, cfg.Datadir)
		require.Equal(t, "kv", cfg.StoreType)
		require.Equal(t, 250*time.Millisecond, cfg.UnlockDelay)
		require.Equal(t, 4, cfg.KeyWorkers)
		require.Equal(t, log.InfoLevel, cfg.Level())
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("BACKUP_DATADIR", "/tmp/backup")
		t.Setenv("BACKUP_STORE_TYPE", "sql")
		t.Setenv("BACKUP_DEFAULT_CHAIN_ID", "c1")
		t.Setenv("BACKUP_UNLOCK_DELAY", "1s")
		t.Setenv("BACKUP_KEY_WORKERS", "8")
		t.Setenv("BACKUP_LOG_LEVEL", "debug")

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, "/tmp/backup", cfg.Datadir)
		require.Equal(t, "sql", cfg.StoreType)
		require.Equal(t, "c1", cfg.DefaultChainID)
		require.Equal(t, time.Second, cfg.UnlockDelay)
		require.Equal(t, 8, cfg.KeyWorkers)
		require.Equal(t, log.DebugLevel, cfg.Level())
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name  string
			key   string
			value string
		}{
			{"store type", "BACKUP_STORE_TYPE", "file"},
			{"key workers", "BACKUP_KEY_WORKERS", "0"},
			{"key workers not a number", "BACKUP_KEY_WORKERS", "many"},
			{"log level", "BACKUP_LOG_LEVEL", "loud"},
			{"unlock delay", "BACKUP_UNLOCK_DELAY", "-1s"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv(tt.key, tt.value)
				_, err := config.Load()
				require.Error(t, err)
			})
		}
	})
}
