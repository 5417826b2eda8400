package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/walletport/backup-sdk/store/sql/sqlc/queries"
	"github.com/walletport/backup-sdk/types"
)

type networkStore struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewNetworkStore(db *sql.DB) types.NetworkStore {
	return &networkStore{
		db:      db,
		querier: queries.New(db),
	}
}

func (s *networkStore) ImportNetwork(ctx context.Context, network types.NetworkRecord) error {
	id := network.ID
	if id == "" {
		id = network.ChainID
	}
	if id == "" {
		return fmt.Errorf("network has neither id nor chain id")
	}

	return s.querier.UpsertNetwork(ctx, queries.UpsertNetworkParams{
		ID:      id,
		ChainID: network.ChainID,
		Name:    network.Name,
		Node:    network.Node,
		Symbol:  network.Symbol,
		Testnet: network.Testnet,
	})
}

func (s *networkStore) GetNetworks(ctx context.Context) ([]types.NetworkRecord, error) {
	rows, err := s.querier.SelectAllNetworks(ctx)
	if err != nil {
		return nil, err
	}

	networks := make([]types.NetworkRecord, 0, len(rows))
	for _, row := range rows {
		networks = append(networks, types.NetworkRecord{
			ID:      row.ID,
			ChainID: row.ChainID,
			Name:    row.Name,
			Node:    row.Node,
			Symbol:  row.Symbol,
			Testnet: row.Testnet,
		})
	}
	return networks, nil
}

func (s *networkStore) Clean(ctx context.Context) error {
	return s.querier.CleanNetworks(ctx)
}

func (s *networkStore) Close() {
	// nolint:all
	s.db.Close()
}
