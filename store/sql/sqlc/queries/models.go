package queries

import (
	"database/sql"
)

type ActiveWallet struct {
	ID         int64
	ChainID    string
	Account    string
	Permission string
}

type Credential struct {
	ID   int64
	Hash []byte
}

type Network struct {
	ID      string
	ChainID string
	Name    string
	Node    string
	Symbol  string
	Testnet bool
}

type Setting struct {
	Name  string
	Value string
}

type Storage struct {
	ID   int64
	Data []byte
}

type Wallet struct {
	ChainID   string
	Account   string
	Authority string
	Pubkey    string
	Mode      string
	Path      sql.NullString
}

type WalletKey struct {
	Pubkey       string
	Path         sql.NullString
	EncryptedKey []byte
}
