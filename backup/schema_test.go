package backup_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/walletport/backup-sdk/backup"
	"github.com/walletport/backup-sdk/types"
)

func TestParseSchemaTag(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			tag      string
			expected backup.SchemaTag
		}{
			{"v1.network", backup.NetworkV1Tag},
			{"anchor.v2.network", backup.NetworkV2Tag},
			{"v2.wallet", backup.WalletV2Tag},
			{"anchor.v1.settings", backup.SettingsV1Tag},
			{"v2.storage", backup.StorageV2Tag},
			{"v3.wallet", backup.SchemaTag{Version: 3, Kind: backup.KindWallet}},
		}
		for _, tt := range tests {
			t.Run(tt.tag, func(t *testing.T) {
				tag, err := backup.ParseSchemaTag(tt.tag)
				require.NoError(t, err)
				require.Equal(t, tt.expected, tag)
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, tag := range []string{
			"", "network", "v1", "x1.network", "v.network", "v0.network",
			"other.v1.network", "anchor.v1.network.extra",
		} {
			t.Run(tag, func(t *testing.T) {
				_, err := backup.ParseSchemaTag(tag)
				require.Error(t, err)
			})
		}
	})

	t.Run("string", func(t *testing.T) {
		require.Equal(t, "anchor.v2.wallet", backup.WalletV2Tag.String())
	})
}

func TestDecodeVariants(t *testing.T) {
	t.Run("network v2 keeps v1 fields", func(t *testing.T) {
		v, err := backup.DecodeNetwork(backup.NetworkV2Tag, json.RawMessage(
			`{"_id":"n1","chainId":"c1","name":"main","node":"https://n","symbol":"EOS","testnet":true}`,
		))
		require.NoError(t, err)

		network, ok := v.(backup.NetworkV2)
		require.True(t, ok)
		require.Equal(t, "n1", network.ID)
		require.Equal(t, "c1", network.ChainID)
		require.True(t, network.Testnet)
	})

	t.Run("weakly typed input", func(t *testing.T) {
		v, err := backup.DecodeNetwork(backup.NetworkV2Tag, json.RawMessage(
			`{"chainId":"c1","testnet":"true"}`,
		))
		require.NoError(t, err)
		require.True(t, v.(backup.NetworkV2).Testnet)
	})

	t.Run("wallet v1", func(t *testing.T) {
		v, err := backup.DecodeWallet(backup.WalletV1Tag, json.RawMessage(
			`{"account":"alice","authority":"active","pubkey":"EOS1","mode":"ledger","path":"44'/194'/0'/0/0"}`,
		))
		require.NoError(t, err)

		wallet, ok := v.(backup.WalletV1)
		require.True(t, ok)
		require.Equal(t, "alice", wallet.Account)
		require.Equal(t, "ledger", wallet.Mode)
	})

	t.Run("settings keep unknown keys", func(t *testing.T) {
		v, err := backup.DecodeSettings(backup.SettingsV2Tag, json.RawMessage(
			`{"node":"https://n","chainId":"c1","blockchains":["c1","c2"],"language":"en"}`,
		))
		require.NoError(t, err)

		settings, ok := v.(backup.SettingsV2)
		require.True(t, ok)
		require.Equal(t, []string{"c1", "c2"}, settings.Blockchains)
		require.Equal(t, "en", settings.Extra["language"])
	})

	t.Run("malformed data", func(t *testing.T) {
		for _, data := range []string{`null`, `[]`, `"x"`, `{`} {
			t.Run(data, func(t *testing.T) {
				_, err := backup.DecodeWallet(backup.WalletV2Tag, json.RawMessage(data))
				require.ErrorIs(t, err, backup.ErrParse)
			})
		}
	})

	t.Run("mismatched field type", func(t *testing.T) {
		_, err := backup.DecodeSettings(backup.SettingsV2Tag, json.RawMessage(
			`{"blockchains":{"c1":true}}`,
		))
		require.ErrorIs(t, err, backup.ErrParse)
	})

	t.Run("unsupported tag", func(t *testing.T) {
		_, err := backup.DecodeNetwork(backup.WalletV1Tag, json.RawMessage(`{}`))
		require.Error(t, err)
	})
}

func TestMigrateSettings(t *testing.T) {
	tests := []struct {
		name     string
		variant  backup.SettingsVariant
		expected types.SettingsRecord
	}{
		{
			name: "v1 gets default chain",
			variant: backup.SettingsV1{
				Node: "https://n", Account: "alice", Authorization: "active", WalletInit: true,
			},
			expected: types.SettingsRecord{
				Node:          "https://n",
				ChainID:       backup.DefaultChainID,
				Account:       "alice",
				Authorization: "active",
				Blockchains:   []string{backup.DefaultChainID},
				WalletInit:    true,
			},
		},
		{
			name: "v2 keeps its chain",
			variant: backup.SettingsV2{
				Node: "https://n", ChainID: "c1", Blockchains: []string{"c2"},
			},
			expected: types.SettingsRecord{
				Node:        "https://n",
				ChainID:     "c1",
				Blockchains: []string{"c2", "c1"},
			},
		},
		{
			name:    "v2 without chain falls back",
			variant: backup.SettingsV2{Blockchains: []string{"c2", "c2", ""}},
			expected: types.SettingsRecord{
				ChainID:     backup.DefaultChainID,
				Blockchains: []string{"c2", backup.DefaultChainID},
			},
		},
		{
			name:    "chain already enabled",
			variant: backup.SettingsV2{ChainID: "c1", Blockchains: []string{"c1", "c2"}},
			expected: types.SettingsRecord{
				ChainID:     "c1",
				Blockchains: []string{"c1", "c2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := backup.MigrateSettings(tt.variant, backup.DefaultChainID)
			require.Equal(t, tt.expected, got)
			require.Contains(t, got.Blockchains, got.ChainID)
		})
	}

	t.Run("custom default", func(t *testing.T) {
		got := backup.MigrateSettings(backup.SettingsV1{}, "custom")
		require.Equal(t, "custom", got.ChainID)
	})

	t.Run("extra is copied", func(t *testing.T) {
		extra := map[string]any{"language": "en"}
		got := backup.MigrateSettings(backup.SettingsV1{Extra: extra}, "c1")
		got.Extra["language"] = "de"
		require.Equal(t, "en", extra["language"])
	})
}
