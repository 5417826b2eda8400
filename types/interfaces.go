package types

import (
	"context"
)

type Store interface {
	NetworkStore() NetworkStore
	WalletStore() WalletStore
	KeyStore() KeyStore
	SettingsStore() SettingsStore
	StorageStore() StorageStore
	CredentialStore() CredentialStore
	Clean(ctx context.Context)
	Close()
}

type NetworkStore interface {
	ImportNetwork(ctx context.Context, network NetworkRecord) error
	GetNetworks(ctx context.Context) ([]NetworkRecord, error)
	Clean(ctx context.Context) error
	Close()
}

type WalletStore interface {
	ImportWallet(ctx context.Context, wallet WalletRecord, settings *SettingsRecord) error
	GetWallets(ctx context.Context) ([]WalletRecord, error)
	ActivateWallet(ctx context.Context, chainID, account, authorization string) error
	GetActiveWallet(ctx context.Context) (*ActiveWallet, error)
	Clean(ctx context.Context) error
	Close()
}

type KeyStore interface {
	ImportHardwarePubkey(ctx context.Context, pubkey, path string) error
	ImportSoftwareKey(ctx context.Context, password, key, pubkey string) error
	GetKeys(ctx context.Context) ([]KeyRecord, error)
	DecryptKey(ctx context.Context, pubkey, password string) (string, error)
	Clean(ctx context.Context) error
	Close()
}

type SettingsStore interface {
	SetSetting(ctx context.Context, key string, value any) error
	SetSettings(ctx context.Context, settings SettingsRecord) error
	GetSettings(ctx context.Context) (*SettingsRecord, error)
	Clean(ctx context.Context) error
	Close()
}

type StorageStore interface {
	SetStorage(ctx context.Context, blob StorageBlob) error
	GetStorage(ctx context.Context) (StorageBlob, error)
	Clean(ctx context.Context) error
	Close()
}

// CredentialStore is the single source of truth for the wallet unlock
// credential.
type CredentialStore interface {
	SetWalletUnlockHash(ctx context.Context, password string) error
	VerifyPassword(ctx context.Context, password string) (bool, error)
	Clean(ctx context.Context) error
	Close()
}

// NodeValidator checks that a node serves the expected chain. Importers only
// trigger it.
type NodeValidator interface {
	ValidateNode(ctx context.Context, node, chainID string, flags NodeValidationFlags) error
}

type BackupSource interface {
	ReadBackup(ctx context.Context, pathHint string) (string, error)
}

// PasswordPrompt collects the password of an encrypted backup. attempt
// starts at 1; lastErr is the failure of the previous attempt, if any.
type PasswordPrompt interface {
	Password(ctx context.Context, attempt int, lastErr error) (string, error)
}
