package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/walletport/backup-sdk/store/sql/sqlc/queries"
	"github.com/walletport/backup-sdk/types"
)

type walletStore struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewWalletStore(db *sql.DB) types.WalletStore {
	return &walletStore{
		db:      db,
		querier: queries.New(db),
	}
}

func (s *walletStore) ImportWallet(
	ctx context.Context, wallet types.WalletRecord, settings *types.SettingsRecord,
) error {
	wallet = wallet.WithContext(settings)
	if wallet.ChainID == "" {
		return fmt.Errorf("wallet %s has no chain id", wallet)
	}

	return s.querier.UpsertWallet(ctx, queries.UpsertWalletParams{
		ChainID:   wallet.ChainID,
		Account:   wallet.Account,
		Authority: wallet.Authority,
		Pubkey:    wallet.PublicKey,
		Mode:      string(wallet.Mode),
		Path:      nullString(wallet.Path),
	})
}

func (s *walletStore) GetWallets(ctx context.Context) ([]types.WalletRecord, error) {
	rows, err := s.querier.SelectAllWallets(ctx)
	if err != nil {
		return nil, err
	}

	wallets := make([]types.WalletRecord, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, types.WalletRecord{
			Account:   row.Account,
			Authority: row.Authority,
			ChainID:   row.ChainID,
			PublicKey: row.Pubkey,
			Mode:      types.WalletMode(row.Mode),
			Path:      row.Path.String,
		})
	}
	return wallets, nil
}

func (s *walletStore) ActivateWallet(
	ctx context.Context, chainID, account, authorization string,
) error {
	return s.querier.UpsertActiveWallet(ctx, queries.UpsertActiveWalletParams{
		ChainID:    chainID,
		Account:    account,
		Permission: authorization,
	})
}

func (s *walletStore) GetActiveWallet(ctx context.Context) (*types.ActiveWallet, error) {
	row, err := s.querier.SelectActiveWallet(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &types.ActiveWallet{
		ChainID:       row.ChainID,
		Account:       row.Account,
		Authorization: row.Permission,
	}, nil
}

func (s *walletStore) Clean(ctx context.Context) error {
	return execTx(ctx, s.db, func(querierWithTx *queries.Queries) error {
		if err := querierWithTx.CleanWallets(ctx); err != nil {
			return err
		}
		return querierWithTx.CleanActiveWallet(ctx)
	})
}

func (s *walletStore) Close() {
	// nolint:all
	s.db.Close()
}
