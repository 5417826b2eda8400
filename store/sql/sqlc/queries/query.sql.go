// source: query.sql

package queries

import (
	"context"
	"database/sql"
)

const cleanActiveWallet = `-- name: CleanActiveWallet :exec
DELETE FROM active_wallet
`

func (q *Queries) CleanActiveWallet(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanActiveWallet)
	return err
}

const cleanCredentials = `-- name: CleanCredentials :exec
DELETE FROM credential
`

func (q *Queries) CleanCredentials(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanCredentials)
	return err
}

const cleanKeys = `-- name: CleanKeys :exec
DELETE FROM wallet_key
`

func (q *Queries) CleanKeys(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanKeys)
	return err
}

const cleanNetworks = `-- name: CleanNetworks :exec
DELETE FROM network
`

func (q *Queries) CleanNetworks(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanNetworks)
	return err
}

const cleanSettings = `-- name: CleanSettings :exec
DELETE FROM setting
`

func (q *Queries) CleanSettings(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanSettings)
	return err
}

const cleanStorage = `-- name: CleanStorage :exec
DELETE FROM storage
`

func (q *Queries) CleanStorage(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanStorage)
	return err
}

const cleanWallets = `-- name: CleanWallets :exec
DELETE FROM wallet
`

func (q *Queries) CleanWallets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, cleanWallets)
	return err
}

const selectActiveWallet = `-- name: SelectActiveWallet :one
SELECT chain_id, account, permission FROM active_wallet WHERE id = 1
`

type SelectActiveWalletRow struct {
	ChainID    string
	Account    string
	Permission string
}

func (q *Queries) SelectActiveWallet(ctx context.Context) (SelectActiveWalletRow, error) {
	row := q.db.QueryRowContext(ctx, selectActiveWallet)
	var i SelectActiveWalletRow
	err := row.Scan(&i.ChainID, &i.Account, &i.Permission)
	return i, err
}

const selectAllKeys = `-- name: SelectAllKeys :many
SELECT pubkey, path, encrypted_key FROM wallet_key ORDER BY pubkey
`

func (q *Queries) SelectAllKeys(ctx context.Context) ([]WalletKey, error) {
	rows, err := q.db.QueryContext(ctx, selectAllKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WalletKey
	for rows.Next() {
		var i WalletKey
		if err := rows.Scan(&i.Pubkey, &i.Path, &i.EncryptedKey); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const selectAllNetworks = `-- name: SelectAllNetworks :many
SELECT id, chain_id, name, node, symbol, testnet FROM network ORDER BY id
`

func (q *Queries) SelectAllNetworks(ctx context.Context) ([]Network, error) {
	rows, err := q.db.QueryContext(ctx, selectAllNetworks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Network
	for rows.Next() {
		var i Network
		if err := rows.Scan(
			&i.ID,
			&i.ChainID,
			&i.Name,
			&i.Node,
			&i.Symbol,
			&i.Testnet,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const selectAllSettings = `-- name: SelectAllSettings :many
SELECT name, value FROM setting
`

func (q *Queries) SelectAllSettings(ctx context.Context) ([]Setting, error) {
	rows, err := q.db.QueryContext(ctx, selectAllSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Setting
	for rows.Next() {
		var i Setting
		if err := rows.Scan(&i.Name, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const selectAllWallets = `-- name: SelectAllWallets :many
SELECT chain_id, account, authority, pubkey, mode, path FROM wallet ORDER BY chain_id, account, authority
`

func (q *Queries) SelectAllWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := q.db.QueryContext(ctx, selectAllWallets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Wallet
	for rows.Next() {
		var i Wallet
		if err := rows.Scan(
			&i.ChainID,
			&i.Account,
			&i.Authority,
			&i.Pubkey,
			&i.Mode,
			&i.Path,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const selectCredential = `-- name: SelectCredential :one
SELECT hash FROM credential WHERE id = 1
`

func (q *Queries) SelectCredential(ctx context.Context) ([]byte, error) {
	row := q.db.QueryRowContext(ctx, selectCredential)
	var hash []byte
	err := row.Scan(&hash)
	return hash, err
}

const selectKey = `-- name: SelectKey :one
SELECT pubkey, path, encrypted_key FROM wallet_key WHERE pubkey = ?1
`

func (q *Queries) SelectKey(ctx context.Context, pubkey string) (WalletKey, error) {
	row := q.db.QueryRowContext(ctx, selectKey, pubkey)
	var i WalletKey
	err := row.Scan(&i.Pubkey, &i.Path, &i.EncryptedKey)
	return i, err
}

const selectStorage = `-- name: SelectStorage :one
SELECT data FROM storage WHERE id = 1
`

func (q *Queries) SelectStorage(ctx context.Context) ([]byte, error) {
	row := q.db.QueryRowContext(ctx, selectStorage)
	var data []byte
	err := row.Scan(&data)
	return data, err
}

const upsertActiveWallet = `-- name: UpsertActiveWallet :exec
INSERT INTO active_wallet (id, chain_id, account, permission)
VALUES (1, ?1, ?2, ?3)
ON CONFLICT(id) DO UPDATE SET
    chain_id = EXCLUDED.chain_id,
    account = EXCLUDED.account,
    permission = EXCLUDED.permission
`

type UpsertActiveWalletParams struct {
	ChainID    string
	Account    string
	Permission string
}

func (q *Queries) UpsertActiveWallet(ctx context.Context, arg UpsertActiveWalletParams) error {
	_, err := q.db.ExecContext(ctx, upsertActiveWallet, arg.ChainID, arg.Account, arg.Permission)
	return err
}

const upsertCredential = `-- name: UpsertCredential :exec
INSERT INTO credential (id, hash) VALUES (1, ?1)
ON CONFLICT(id) DO UPDATE SET hash = EXCLUDED.hash
`

func (q *Queries) UpsertCredential(ctx context.Context, hash []byte) error {
	_, err := q.db.ExecContext(ctx, upsertCredential, hash)
	return err
}

const upsertKey = `-- name: UpsertKey :exec
INSERT INTO wallet_key (pubkey, path, encrypted_key)
VALUES (?1, ?2, ?3)
ON CONFLICT(pubkey) DO UPDATE SET
    path = EXCLUDED.path,
    encrypted_key = EXCLUDED.encrypted_key
`

type UpsertKeyParams struct {
	Pubkey       string
	Path         sql.NullString
	EncryptedKey []byte
}

func (q *Queries) UpsertKey(ctx context.Context, arg UpsertKeyParams) error {
	_, err := q.db.ExecContext(ctx, upsertKey, arg.Pubkey, arg.Path, arg.EncryptedKey)
	return err
}

const upsertNetwork = `-- name: UpsertNetwork :exec
INSERT INTO network (id, chain_id, name, node, symbol, testnet)
VALUES (?1, ?2, ?3, ?4, ?5, ?6)
ON CONFLICT(id) DO UPDATE SET
    chain_id = EXCLUDED.chain_id,
    name = EXCLUDED.name,
    node = EXCLUDED.node,
    symbol = EXCLUDED.symbol,
    testnet = EXCLUDED.testnet
`

type UpsertNetworkParams struct {
	ID      string
	ChainID string
	Name    string
	Node    string
	Symbol  string
	Testnet bool
}

func (q *Queries) UpsertNetwork(ctx context.Context, arg UpsertNetworkParams) error {
	_, err := q.db.ExecContext(ctx, upsertNetwork,
		arg.ID,
		arg.ChainID,
		arg.Name,
		arg.Node,
		arg.Symbol,
		arg.Testnet,
	)
	return err
}

const upsertSetting = `-- name: UpsertSetting :exec
INSERT INTO setting (name, value) VALUES (?1, ?2)
ON CONFLICT(name) DO UPDATE SET value = EXCLUDED.value
`

type UpsertSettingParams struct {
	Name  string
	Value string
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, arg.Name, arg.Value)
	return err
}

const upsertStorage = `-- name: UpsertStorage :exec
INSERT INTO storage (id, data) VALUES (1, ?1)
ON CONFLICT(id) DO UPDATE SET data = EXCLUDED.data
`

func (q *Queries) UpsertStorage(ctx context.Context, data []byte) error {
	_, err := q.db.ExecContext(ctx, upsertStorage, data)
	return err
}

const upsertWallet = `-- name: UpsertWallet :exec
INSERT INTO wallet (chain_id, account, authority, pubkey, mode, path)
VALUES (?1, ?2, ?3, ?4, ?5, ?6)
ON CONFLICT(chain_id, account, authority) DO UPDATE SET
    pubkey = EXCLUDED.pubkey,
    mode = EXCLUDED.mode,
    path = EXCLUDED.path
`

type UpsertWalletParams struct {
	ChainID   string
	Account   string
	Authority string
	Pubkey    string
	Mode      string
	Path      sql.NullString
}

func (q *Queries) UpsertWallet(ctx context.Context, arg UpsertWalletParams) error {
	_, err := q.db.ExecContext(ctx, upsertWallet,
		arg.ChainID,
		arg.Account,
		arg.Authority,
		arg.Pubkey,
		arg.Mode,
		arg.Path,
	)
	return err
}
