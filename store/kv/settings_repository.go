package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/walletport/backup-sdk/types"
)

const (
	settingsStoreDir = "settings"
)

type settingsStore struct {
	db *badgerhold.Store
}

// settingData holds a single setting, JSON encoded so that any value the
// wallet keeps can be persisted.
type settingData struct {
	Key   string
	Value []byte
}

func NewSettingsStore(dir string, logger badger.Logger) (types.SettingsStore, error) {
	if dir != "" {
		dir = filepath.Join(dir, settingsStoreDir)
	}
	badgerDb, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %s", err)
	}
	return &settingsStore{
		db: badgerDb,
	}, nil
}

func (s *settingsStore) SetSetting(_ context.Context, key string, value any) error {
	data, err := toSettingData(key, value)
	if err != nil {
		return err
	}
	return s.db.Upsert(key, data)
}

// SetSettings writes every entry of the record in a single transaction.
func (s *settingsStore) SetSettings(_ context.Context, settings types.SettingsRecord) error {
	return s.db.Badger().Update(func(tx *badger.Txn) error {
		for key, value := range settings.Entries() {
			data, err := toSettingData(key, value)
			if err != nil {
				return err
			}
			if err := s.db.TxUpsert(tx, key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSettings returns nil if nothing was ever stored.
func (s *settingsStore) GetSettings(_ context.Context) (*types.SettingsRecord, error) {
	var records []settingData
	if err := s.db.Find(&records, nil); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	entries := make(map[string]json.RawMessage, len(records))
	for _, r := range records {
		entries[r.Key] = r.Value
	}
	return types.SettingsFromEntries(entries)
}

func (s *settingsStore) Clean(_ context.Context) error {
	if err := s.db.Badger().DropAll(); err != nil {
		return fmt.Errorf("failed to clean the settings db: %s", err)
	}
	return nil
}

func (s *settingsStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Debugf("error on closing settings db: %s", err)
	}
}

func toSettingData(key string, value any) (*settingData, error) {
	buf, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode setting %s: %s", key, err)
	}
	return &settingData{Key: key, Value: buf}, nil
}
