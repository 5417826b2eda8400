package types

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	SettingNode          = "node"
	SettingChainID       = "chainId"
	SettingAccount       = "account"
	SettingAuthorization = "authorization"
	SettingBlockchains   = "blockchains"
	SettingWalletInit    = "walletInit"
)

type SettingsRecord struct {
	Node          string         `json:"node"`
	ChainID       string         `json:"chainId"`
	Account       string         `json:"account"`
	Authorization string         `json:"authorization"`
	Blockchains   []string       `json:"blockchains"`
	WalletInit    bool           `json:"walletInit"`
	Extra         map[string]any `json:"-"`
}

// Entries flattens the record into the key/value form stores persist.
func (s SettingsRecord) Entries() map[string]any {
	entries := make(map[string]any, len(s.Extra)+6)
	for k, v := range s.Extra {
		entries[k] = v
	}
	entries[SettingNode] = s.Node
	entries[SettingChainID] = s.ChainID
	entries[SettingAccount] = s.Account
	entries[SettingAuthorization] = s.Authorization
	entries[SettingBlockchains] = s.Blockchains
	if s.WalletInit {
		entries[SettingWalletInit] = true
	}
	return entries
}

// SettingsFromEntries rebuilds a record from persisted key/value pairs.
func SettingsFromEntries(entries map[string]json.RawMessage) (*SettingsRecord, error) {
	s := &SettingsRecord{Extra: make(map[string]any)}
	for key, raw := range entries {
		var target any
		switch key {
		case SettingNode:
			target = &s.Node
		case SettingChainID:
			target = &s.ChainID
		case SettingAccount:
			target = &s.Account
		case SettingAuthorization:
			target = &s.Authorization
		case SettingBlockchains:
			target = &s.Blockchains
		case SettingWalletInit:
			target = &s.WalletInit
		default:
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("failed to decode setting %s: %w", key, err)
			}
			s.Extra[key] = v
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("failed to decode setting %s: %w", key, err)
		}
	}
	return s, nil
}

// MergeChainIDs returns the union of the given lists, keeping first-seen
// order and dropping empty ids.
func MergeChainIDs(lists ...[]string) []string {
	merged := make([]string, 0)
	for _, list := range lists {
		for _, id := range list {
			if id == "" || slices.Contains(merged, id) {
				continue
			}
			merged = append(merged, id)
		}
	}
	return merged
}
