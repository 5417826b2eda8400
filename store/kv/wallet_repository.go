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
	walletStoreDir  = "wallets"
	activeWalletKey = "active"
)

type walletStore struct {
	db *badgerhold.Store
}

type walletData struct {
	Account   string
	Authority string
	ChainID   string
	PublicKey string
	Mode      string
	Path      string
}

type activeWalletData struct {
	ChainID       string
	Account       string
	Authorization string
}

func NewWalletStore(dir string, logger badger.Logger) (types.WalletStore, error) {
	if dir != "" {
		dir = filepath.Join(dir, walletStoreDir)
	}
	badgerDb, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet store: %s", err)
	}
	return &walletStore{
		db: badgerDb,
	}, nil
}

func (s *walletStore) ImportWallet(
	_ context.Context, wallet types.WalletRecord, settings *types.SettingsRecord,
) error {
	wallet = wallet.WithContext(settings)
	if wallet.ChainID == "" {
		return fmt.Errorf("wallet %s has no chain id", wallet)
	}

	data := walletData{
		Account:   wallet.Account,
		Authority: wallet.Authority,
		ChainID:   wallet.ChainID,
		PublicKey: wallet.PublicKey,
		Mode:      string(wallet.Mode),
		Path:      wallet.Path,
	}
	return s.db.Upsert(walletKey(wallet.ChainID, wallet.Account, wallet.Authority), &data)
}

func (s *walletStore) GetWallets(_ context.Context) ([]types.WalletRecord, error) {
	var records []walletData
	if err := s.db.Find(&records, nil); err != nil {
		return nil, err
	}

	wallets := make([]types.WalletRecord, 0, len(records))
	for _, r := range records {
		wallets = append(wallets, types.WalletRecord{
			Account:   r.Account,
			Authority: r.Authority,
			ChainID:   r.ChainID,
			PublicKey: r.PublicKey,
			Mode:      types.WalletMode(r.Mode),
			Path:      r.Path,
		})
	}
	return wallets, nil
}

// ActivateWallet selects the wallet used by default. Backups may name an
// account whose wallet was not exported, so the wallet does not need to exist.
func (s *walletStore) ActivateWallet(
	_ context.Context, chainID, account, authorization string,
) error {
	var wallet walletData
	if err := s.db.Get(walletKey(chainID, account, authorization), &wallet); err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}
		log.Debugf("activating %s@%s on %s without an imported wallet", account, authorization, chainID)
	}

	return s.db.Upsert(activeWalletKey, &activeWalletData{
		ChainID:       chainID,
		Account:       account,
		Authorization: authorization,
	})
}

func (s *walletStore) GetActiveWallet(_ context.Context) (*types.ActiveWallet, error) {
	var active activeWalletData
	if err := s.db.Get(activeWalletKey, &active); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &types.ActiveWallet{
		ChainID:       active.ChainID,
		Account:       active.Account,
		Authorization: active.Authorization,
	}, nil
}

func (s *walletStore) Clean(_ context.Context) error {
	if err := s.db.Badger().DropAll(); err != nil {
		return fmt.Errorf("failed to clean the wallet db: %s", err)
	}
	return nil
}

func (s *walletStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Debugf("error on closing wallet db: %s", err)
	}
}

func walletKey(chainID, account, authority string) string {
	return fmt.Sprintf("%s:%s@%s", chainID, account, authority)
}
