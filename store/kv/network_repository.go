package kvstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/walletport/backup-sdk/types"
)

const (
	networkStoreDir = "networks"
)

type networkStore struct {
	db *badgerhold.Store
}

func NewNetworkStore(dir string, logger badger.Logger) (types.NetworkStore, error) {
	if dir != "" {
		dir = filepath.Join(dir, networkStoreDir)
	}
	badgerDb, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open network store: %s", err)
	}
	return &networkStore{
		db: badgerDb,
	}, nil
}

// ImportNetwork upserts by network id, falling back to the chain id for
// networks exported without one.
func (s *networkStore) ImportNetwork(_ context.Context, network types.NetworkRecord) error {
	key := network.ID
	if key == "" {
		key = network.ChainID
	}
	if key == "" {
		return fmt.Errorf("network has neither id nor chain id")
	}
	return s.db.Upsert(key, &network)
}

func (s *networkStore) GetNetworks(_ context.Context) ([]types.NetworkRecord, error) {
	var networks []types.NetworkRecord
	if err := s.db.Find(&networks, nil); err != nil {
		return nil, err
	}
	return networks, nil
}

func (s *networkStore) Clean(_ context.Context) error {
	if err := s.db.Badger().DropAll(); err != nil {
		return fmt.Errorf("failed to clean the network db: %s", err)
	}
	return nil
}

func (s *networkStore) Close() {
	if err := s.db.Close(); err != nil {
		log.Debugf("error on closing network db: %s", err)
	}
}
