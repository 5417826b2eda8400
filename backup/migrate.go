package backup

import (
	"maps"

	"github.com/walletport/backup-sdk/types"
)

// DefaultChainID is the chain assumed by settings exported before the
// wallet supported more than one chain.
const DefaultChainID = "aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906"

// MigrateSettings upgrades any settings variant to the current record shape.
// A missing chain id falls back to defaultChainID, and the active chain is
// always part of the enabled blockchains.
func MigrateSettings(v SettingsVariant, defaultChainID string) types.SettingsRecord {
	var current SettingsV2
	switch s := v.(type) {
	case SettingsV1:
		current = migrateV1(s, defaultChainID)
	case SettingsV2:
		current = s
	}

	if current.ChainID == "" {
		current.ChainID = defaultChainID
	}

	return types.SettingsRecord{
		Node:          current.Node,
		ChainID:       current.ChainID,
		Account:       current.Account,
		Authorization: current.Authorization,
		Blockchains:   types.MergeChainIDs(current.Blockchains, []string{current.ChainID}),
		WalletInit:    current.WalletInit,
		Extra:         maps.Clone(current.Extra),
	}
}

func migrateV1(s SettingsV1, defaultChainID string) SettingsV2 {
	return SettingsV2{
		Node:          s.Node,
		ChainID:       defaultChainID,
		Account:       s.Account,
		Authorization: s.Authorization,
		WalletInit:    s.WalletInit,
		Extra:         s.Extra,
	}
}
