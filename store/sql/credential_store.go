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

type credentialStore struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewCredentialStore(db *sql.DB) types.CredentialStore {
	return &credentialStore{
		db:      db,
		querier: queries.New(db),
	}
}

func (s *credentialStore) SetWalletUnlockHash(ctx context.Context, password string) error {
	hash, err := crypto.HashPassword([]byte(password))
	if err != nil {
		return fmt.Errorf("failed to hash password: %s", err)
	}
	return s.querier.UpsertCredential(ctx, hash)
}

func (s *credentialStore) VerifyPassword(ctx context.Context, password string) (bool, error) {
	hash, err := s.querier.SelectCredential(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return crypto.VerifyPassword([]byte(password), hash), nil
}

func (s *credentialStore) Clean(ctx context.Context) error {
	return s.querier.CleanCredentials(ctx)
}

func (s *credentialStore) Close() {
	// nolint:all
	s.db.Close()
}
