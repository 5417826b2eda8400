package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/walletport/backup-sdk/store/sql/sqlc/queries"
	"github.com/walletport/backup-sdk/types"
)

type settingsStore struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewSettingsStore(db *sql.DB) types.SettingsStore {
	return &settingsStore{
		db:      db,
		querier: queries.New(db),
	}
}

func (s *settingsStore) SetSetting(ctx context.Context, key string, value any) error {
	params, err := toSettingParams(key, value)
	if err != nil {
		return err
	}
	return s.querier.UpsertSetting(ctx, params)
}

func (s *settingsStore) SetSettings(ctx context.Context, settings types.SettingsRecord) error {
	return execTx(ctx, s.db, func(querierWithTx *queries.Queries) error {
		for key, value := range settings.Entries() {
			params, err := toSettingParams(key, value)
			if err != nil {
				return err
			}
			if err := querierWithTx.UpsertSetting(ctx, params); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *settingsStore) GetSettings(ctx context.Context) (*types.SettingsRecord, error) {
	rows, err := s.querier.SelectAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	entries := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		entries[row.Name] = json.RawMessage(row.Value)
	}
	return types.SettingsFromEntries(entries)
}

func (s *settingsStore) Clean(ctx context.Context) error {
	return s.querier.CleanSettings(ctx)
}

func (s *settingsStore) Close() {
	// nolint:all
	s.db.Close()
}

func toSettingParams(key string, value any) (queries.UpsertSettingParams, error) {
	buf, err := json.Marshal(value)
	if err != nil {
		return queries.UpsertSettingParams{}, fmt.Errorf("failed to encode setting %s: %s", key, err)
	}
	return queries.UpsertSettingParams{Name: key, Value: string(buf)}, nil
}
