package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	kvstore "github.com/walletport/backup-sdk/store/kv"
	sqlstore "github.com/walletport/backup-sdk/store/sql"
	"github.com/walletport/backup-sdk/types"
)

type Config struct {
	StoreType string
	BaseDir   string
	// Logger receives badger's own logs, none when nil.
	Logger badger.Logger
}

type service struct {
	networkStore    types.NetworkStore
	walletStore     types.WalletStore
	keyStore        types.KeyStore
	settingsStore   types.SettingsStore
	storageStore    types.StorageStore
	credentialStore types.CredentialStore
}

func NewStore(cfg Config) (types.Store, error) {
	switch cfg.StoreType {
	case types.InMemoryStore:
		return newKVStore("", cfg.Logger)
	case types.KVStore:
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("missing base dir for %s store", cfg.StoreType)
		}
		return newKVStore(cfg.BaseDir, cfg.Logger)
	case types.SQLStore:
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("missing base dir for %s store", cfg.StoreType)
		}
		db, err := sqlstore.OpenDB(cfg.BaseDir)
		if err != nil {
			return nil, err
		}
		return newSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}
}

func newKVStore(dir string, logger badger.Logger) (types.Store, error) {
	svc := &service{}
	// Close whatever was opened if a later store fails.
	fail := func(err error) (types.Store, error) {
		svc.Close()
		return nil, err
	}

	var err error
	if svc.networkStore, err = kvstore.NewNetworkStore(dir, logger); err != nil {
		return fail(err)
	}
	if svc.walletStore, err = kvstore.NewWalletStore(dir, logger); err != nil {
		return fail(err)
	}
	if svc.keyStore, err = kvstore.NewKeyStore(dir, logger); err != nil {
		return fail(err)
	}
	if svc.settingsStore, err = kvstore.NewSettingsStore(dir, logger); err != nil {
		return fail(err)
	}
	if svc.storageStore, err = kvstore.NewStorageStore(dir, logger); err != nil {
		return fail(err)
	}
	if svc.credentialStore, err = kvstore.NewCredentialStore(dir, logger); err != nil {
		return fail(err)
	}
	return svc, nil
}

func newSQLStore(db *sql.DB) types.Store {
	return &service{
		networkStore:    sqlstore.NewNetworkStore(db),
		walletStore:     sqlstore.NewWalletStore(db),
		keyStore:        sqlstore.NewKeyStore(db),
		settingsStore:   sqlstore.NewSettingsStore(db),
		storageStore:    sqlstore.NewStorageStore(db),
		credentialStore: sqlstore.NewCredentialStore(db),
	}
}

func (s *service) NetworkStore() types.NetworkStore {
	return s.networkStore
}

func (s *service) WalletStore() types.WalletStore {
	return s.walletStore
}

func (s *service) KeyStore() types.KeyStore {
	return s.keyStore
}

func (s *service) SettingsStore() types.SettingsStore {
	return s.settingsStore
}

func (s *service) StorageStore() types.StorageStore {
	return s.storageStore
}

func (s *service) CredentialStore() types.CredentialStore {
	return s.credentialStore
}

func (s *service) Clean(ctx context.Context) {
	for name, clean := range s.cleaners() {
		if err := clean(ctx); err != nil {
			log.WithError(err).Warnf("failed to clean %s store", name)
		}
	}
}

func (s *service) Close() {
	if s.networkStore != nil {
		s.networkStore.Close()
	}
	if s.walletStore != nil {
		s.walletStore.Close()
	}
	if s.keyStore != nil {
		s.keyStore.Close()
	}
	if s.settingsStore != nil {
		s.settingsStore.Close()
	}
	if s.storageStore != nil {
		s.storageStore.Close()
	}
	if s.credentialStore != nil {
		s.credentialStore.Close()
	}
}

func (s *service) cleaners() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"network":    s.networkStore.Clean,
		"wallet":     s.walletStore.Clean,
		"key":        s.keyStore.Clean,
		"settings":   s.settingsStore.Clean,
		"storage":    s.storageStore.Clean,
		"credential": s.credentialStore.Clean,
	}
}
