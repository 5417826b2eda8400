package kvstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/walletport/backup-sdk/internal/crypto"
	"github.com/walletport/backup-sdk/types"
)

const (
	keyStoreDir = "keys"
)

type keyStore struct {
	db *badgerhold.Store
}

type keyData struct {
	PublicKey    string
	Path         string
	EncryptedKey []byte
}

func NewKeyStore(dir string, logger badger.Logger) (types.KeyStore, error) {
	if dir != "" {
		dir = filepath.Join(dir, keyStoreDir)
	}
	badgerDb, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open key store: %s", err)
	}
	return &keyStore{
		db: badgerDb,
	}, nil
}

func (s *keyStore) ImportHardwarePubkey(_ context.Context, pubkey, path string) error {
	if pubkey == "" || path == "" {
		return fmt.Errorf("missing public key or derivation path")
	}
	return s.db.Upsert(pubkey, &keyData{PublicKey: pubkey, Path: path})
}

// ImportSoftwareKey stores the private key locked with password.
func (s *keyStore) ImportSoftwareKey(_ context.Context, password, key, pubkey string) error {
	if pubkey == "" || key == "" {
		return fmt.Errorf("missing public or private key")
	}
	encrypted, err := crypto.EncryptAES256([]byte(key), []byte(password))
	if err != nil {
		return fmt.Errorf("failed to lock private key: %s", err)
	}
	return s.db.Upsert(pubkey, &keyData{PublicKey: pubkey, EncryptedKey: encrypted})
}

func (s *keyStore) GetKeys(_ context.Context) ([]types.KeyRecord, error) {
	var records []keyData
	if err := s.db.Find(&records, nil); err != nil {
		return nil, err
	}

	keys := make([]types.KeyRecord, 0, len(records))
	for _, r := range records {
		keys = append(keys, types.KeyRecord{
			PublicKey:    r.PublicKey,
			Path:         r.Path,
			EncryptedKey: r.EncryptedKey,
		})
	}
	return keys, nil
}

func (s *keyStore) DecryptKey(_ context.Context, pubkey, password string) (string, error) {
	var record keyData
	if err := s.db.Get(pubkey, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", fmt.Errorf("key not found: %s", pubkey)
		}
		return "", err
	}
	if record.Path != "" {
		return "", fmt.Errorf("key %s is held by a hardware device", pubkey)
	}

	key, err := crypto.DecryptAES256(record.EncryptedKey, []byte(password))
	if err != nil {
		return "", err
	}
	return string(key), nil
}

func (s *keyStore) Clean(_ context.Context) error {
	if err := s.db.Badger().DropAll(); err != nil {
		return fmt.Errorf("failed to clean the key db: %s", err)
	}
	return nil
}

func (s *keyStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Debugf("error on closing key db: %s", err)
	}
}
