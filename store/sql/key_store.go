package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/walletport/backup-sdk/internal/crypto"
	"github.com/walletport/backup-sdk/store/sql/sqlc/queries"
	"github.com/walletport/backup-sdk/types"
)

type keyStore struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewKeyStore(db *sql.DB) types.KeyStore {
	return &keyStore{
		db:      db,
		querier: queries.New(db),
	}
}

func (s *keyStore) ImportHardwarePubkey(ctx context.Context, pubkey, path string) error {
	if pubkey == "" || path == "" {
		return fmt.Errorf("missing public key or derivation path")
	}
	return s.querier.UpsertKey(ctx, queries.UpsertKeyParams{
		Pubkey: pubkey,
		Path:   nullString(path),
	})
}

func (s *keyStore) ImportSoftwareKey(ctx context.Context, password, key, pubkey string) error {
	if pubkey == "" || key == "" {
		return fmt.Errorf("missing public or private key")
	}
	encrypted, err := crypto.EncryptAES256([]byte(key), []byte(password))
	if err != nil {
		return fmt.Errorf("failed to lock private key: %s", err)
	}
	return s.querier.UpsertKey(ctx, queries.UpsertKeyParams{
		Pubkey:       pubkey,
		EncryptedKey: encrypted,
	})
}

func (s *keyStore) GetKeys(ctx context.Context) ([]types.KeyRecord, error) {
	rows, err := s.querier.SelectAllKeys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]types.KeyRecord, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, types.KeyRecord{
			PublicKey:    row.Pubkey,
			Path:         row.Path.String,
			EncryptedKey: row.EncryptedKey,
		})
	}
	return keys, nil
}

func (s *keyStore) DecryptKey(ctx context.Context, pubkey, password string) (string, error) {
	row, err := s.querier.SelectKey(ctx, pubkey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("key not found: %s", pubkey)
		}
		return "", err
	}
	if row.Path.Valid {
		return "", fmt.Errorf("key %s is held by a hardware device", pubkey)
	}

	key, err := crypto.DecryptAES256(row.EncryptedKey, []byte(password))
	if err != nil {
		return "", err
	}
	return string(key), nil
}

func (s *keyStore) Clean(ctx context.Context) error {
	return s.querier.CleanKeys(ctx)
}

func (s *keyStore) Close() {
	// nolint:all
	s.db.Close()
}
