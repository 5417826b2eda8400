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
	credentialStoreDir = "credentials"
	unlockHashKey      = "unlock"
)

type credentialStore struct {
	db *badgerhold.Store
}

type credentialData struct {
	Hash []byte
}

func NewCredentialStore(dir string, logger badger.Logger) (types.CredentialStore, error) {
	if dir != "" {
		dir = filepath.Join(dir, credentialStoreDir)
	}
	badgerDb, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %s", err)
	}
	return &credentialStore{
		db: badgerDb,
	}, nil
}

// SetWalletUnlockHash replaces the unlock credential with a salted hash of
// password. The password itself is never stored.
func (s *credentialStore) SetWalletUnlockHash(_ context.Context, password string) error {
	hash, err := crypto.HashPassword([]byte(password))
	if err != nil {
		return fmt.Errorf("failed to hash password: %s", err)
	}
	return s.db.Upsert(unlockHashKey, &credentialData{Hash: hash})
}

func (s *credentialStore) VerifyPassword(_ context.Context, password string) (bool, error) {
	var data credentialData
	if err := s.db.Get(unlockHashKey, &data); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return crypto.VerifyPassword([]byte(password), data.Hash), nil
}

func (s *credentialStore) Clean(_ context.Context) error {
	if err := s.db.Badger().DropAll(); err != nil {
		return fmt.Errorf("failed to clean the credential db: %s", err)
	}
	return nil
}

func (s *credentialStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Debugf("error on closing credential db: %s", err)
	}
}
