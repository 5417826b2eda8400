package kvstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/walletport/backup-sdk/types"
)

const (
	storageStoreDir = "storage"
	storageKey      = "storage"
)

type storageStore struct {
	db *badgerhold.Store
}

type storageData struct {
	Data []byte
}

func NewStorageStore(dir string, logger badger.Logger) (types.StorageStore, error) {
	if dir != "" {
		dir = filepath.Join(dir, storageStoreDir)
	}
	badgerDb, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage store: %s", err)
	}
	return &storageStore{
		db: badgerDb,
	}, nil
}

// SetStorage replaces the whole blob.
func (s *storageStore) SetStorage(_ context.Context, blob types.StorageBlob) error {
	return s.db.Upsert(storageKey, &storageData{Data: []byte(blob)})
}

func (s *storageStore) GetStorage(_ context.Context) (types.StorageBlob, error) {
	var data storageData
	if err := s.db.Get(storageKey, &data); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return types.StorageBlob(data.Data), nil
}

func (s *storageStore) Clean(_ context.Context) error {
	if err := s.db.Badger().DropAll(); err != nil {
		return fmt.Errorf("failed to clean the storage db: %s", err)
	}
	return nil
}

func (s *storageStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Debugf("error on closing storage db: %s", err)
	}
}
