package backup_test

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/walletport/backup-sdk/types"
)

// recorder is an in-memory store that remembers the order of every write.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	fail     map[string]error
	networks []types.NetworkRecord
	wallets  []types.WalletRecord
	keys     []types.KeyRecord
	settings map[string]any
	storage  types.StorageBlob
	unlock   string
	active   *types.ActiveWallet
}

func newRecorder() *recorder {
	return &recorder{
		fail:     make(map[string]error),
		settings: make(map[string]any),
	}
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	return r.fail[call]
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *recorder) Count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeStore struct{ *recorder }

func (s fakeStore) NetworkStore() types.NetworkStore       { return fakeNetworks(s) }
func (s fakeStore) WalletStore() types.WalletStore         { return fakeWallets(s) }
func (s fakeStore) KeyStore() types.KeyStore               { return fakeKeys(s) }
func (s fakeStore) SettingsStore() types.SettingsStore     { return fakeSettings(s) }
func (s fakeStore) StorageStore() types.StorageStore       { return fakeStorage(s) }
func (s fakeStore) CredentialStore() types.CredentialStore { return fakeCredentials(s) }
func (s fakeStore) Clean(context.Context)                  {}
func (s fakeStore) Close()                                 {}

type fakeNetworks struct{ *recorder }

func (s fakeNetworks) ImportNetwork(_ context.Context, network types.NetworkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("importNetwork"); err != nil {
		return err
	}
	s.networks = append(s.networks, network)
	return nil
}

func (s fakeNetworks) GetNetworks(context.Context) ([]types.NetworkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.networks), nil
}

func (s fakeNetworks) Clean(context.Context) error { return nil }
func (s fakeNetworks) Close()                      {}

type fakeWallets struct{ *recorder }

func (s fakeWallets) ImportWallet(
	_ context.Context, wallet types.WalletRecord, settings *types.SettingsRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("importWallet"); err != nil {
		return err
	}
	s.wallets = append(s.wallets, wallet.WithContext(settings))
	return nil
}

func (s fakeWallets) GetWallets(context.Context) ([]types.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wallets), nil
}

func (s fakeWallets) ActivateWallet(_ context.Context, chainID, account, authorization string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("activateWallet"); err != nil {
		return err
	}
	s.active = &types.ActiveWallet{ChainID: chainID, Account: account, Authorization: authorization}
	return nil
}

func (s fakeWallets) GetActiveWallet(context.Context) (*types.ActiveWallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

func (s fakeWallets) Clean(context.Context) error { return nil }
func (s fakeWallets) Close()                      {}

type fakeKeys struct{ *recorder }

func (s fakeKeys) ImportHardwarePubkey(_ context.Context, pubkey, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("importHardwarePubkey"); err != nil {
		return err
	}
	s.keys = append(s.keys, types.KeyRecord{PublicKey: pubkey, Path: path})
	return nil
}

func (s fakeKeys) ImportSoftwareKey(_ context.Context, password, key, pubkey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("importSoftwareKey"); err != nil {
		return err
	}
	// Kept in clear so tests can assert on the imported WIF.
	s.keys = append(s.keys, types.KeyRecord{PublicKey: pubkey, EncryptedKey: []byte(key)})
	return nil
}

func (s fakeKeys) GetKeys(context.Context) ([]types.KeyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keys), nil
}

func (s fakeKeys) DecryptKey(_ context.Context, pubkey, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.PublicKey == pubkey && !k.IsHardware() {
			return string(k.EncryptedKey), nil
		}
	}
	return "", fmt.Errorf("key not found: %s", pubkey)
}

func (s fakeKeys) Clean(context.Context) error { return nil }
func (s fakeKeys) Close()                      {}

type fakeSettings struct{ *recorder }

func (s fakeSettings) SetSetting(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("setSetting:" + key); err != nil {
		return err
	}
	s.settings[key] = value
	return nil
}

func (s fakeSettings) SetSettings(_ context.Context, settings types.SettingsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("setSettings"); err != nil {
		return err
	}
	for k, v := range settings.Entries() {
		s.settings[k] = v
	}
	return nil
}

func (s fakeSettings) GetSettings(context.Context) (*types.SettingsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := &types.SettingsRecord{}
	if v, ok := s.settings[types.SettingChainID].(string); ok {
		record.ChainID = v
	}
	if v, ok := s.settings[types.SettingNode].(string); ok {
		record.Node = v
	}
	if v, ok := s.settings[types.SettingBlockchains].([]string); ok {
		record.Blockchains = v
	}
	if v, ok := s.settings[types.SettingWalletInit].(bool); ok {
		record.WalletInit = v
	}
	return record, nil
}

func (s fakeSettings) Clean(context.Context) error { return nil }
func (s fakeSettings) Close()                      {}

type fakeStorage struct{ *recorder }

func (s fakeStorage) SetStorage(_ context.Context, blob types.StorageBlob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("setStorage"); err != nil {
		return err
	}
	s.storage = blob
	return nil
}

func (s fakeStorage) GetStorage(context.Context) (types.StorageBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage, nil
}

func (s fakeStorage) Clean(context.Context) error { return nil }
func (s fakeStorage) Close()                      {}

type fakeCredentials struct{ *recorder }

func (s fakeCredentials) SetWalletUnlockHash(_ context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("setWalletUnlockHash"); err != nil {
		return err
	}
	s.unlock = password
	return nil
}

func (s fakeCredentials) VerifyPassword(_ context.Context, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlock != "" && s.unlock == password, nil
}

func (s fakeCredentials) Clean(context.Context) error { return nil }
func (s fakeCredentials) Close()                      {}

type validation struct {
	node    string
	chainID string
	flags   types.NodeValidationFlags
}

type fakeValidator struct {
	mu    sync.Mutex
	calls []validation
	err   error
}

func (v *fakeValidator) ValidateNode(
	_ context.Context, node, chainID string, flags types.NodeValidationFlags,
) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, validation{node, chainID, flags})
	return v.err
}
