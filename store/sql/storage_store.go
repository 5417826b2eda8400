package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/walletport/backup-sdk/store/sql/sqlc/queries"
	"github.com/walletport/backup-sdk/types"
)

type storageStore struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewStorageStore(db *sql.DB) types.StorageStore {
	return &storageStore{
		db:      db,
		querier: queries.New(db),
	}
}

func (s *storageStore) SetStorage(ctx context.Context, blob types.StorageBlob) error {
	return s.querier.UpsertStorage(ctx, []byte(blob))
}

func (s *storageStore) GetStorage(ctx context.Context) (types.StorageBlob, error) {
	data, err := s.querier.SelectStorage(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return types.StorageBlob(data), nil
}

func (s *storageStore) Clean(ctx context.Context) error {
	return s.querier.CleanStorage(ctx)
}

func (s *storageStore) Close() {
	// nolint:all
	s.db.Close()
}
