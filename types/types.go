package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	InMemoryStore = "inmemory"
	KVStore       = "kv"
	SQLStore      = "sql"
)

// NativeBlockchain is the only blockchain whose networks and keys are
// carried over from legacy backups.
const NativeBlockchain = "eos"

type Format int

const (
	FormatNative Format = iota
	FormatLegacyEncrypted
)

func (f Format) String() string {
	return map[Format]string{
		FormatNative:          "NATIVE",
		FormatLegacyEncrypted: "LEGACY_ENCRYPTED",
	}[f]
}

// BackupEnvelope is the raw backup text together with its detected format.
// It only lives for the duration of a single import run.
type BackupEnvelope struct {
	Raw    string
	Format Format
}

type NetworkRecord struct {
	ID      string `json:"_id,omitempty"`
	ChainID string `json:"chainId" validate:"required"`
	Name    string `json:"name"`
	Node    string `json:"node"`
	Symbol  string `json:"symbol,omitempty"`
	Testnet bool   `json:"testnet"`
}

type WalletMode string

const (
	WalletModeHot      WalletMode = "hot"
	WalletModeHardware WalletMode = "hardware"
	WalletModeWatch    WalletMode = "watch"
	WalletModeCold     WalletMode = "cold"
)

// ParseWalletMode maps the aliases found in backups onto their canonical
// mode. "ledger" is the name older exports use for hardware wallets and an
// empty mode means hot. Any other mode is kept verbatim.
func ParseWalletMode(mode string) WalletMode {
	switch mode := strings.ToLower(strings.TrimSpace(mode)); mode {
	case "", "hot", "key":
		return WalletModeHot
	case "hardware", "ledger":
		return WalletModeHardware
	default:
		return WalletMode(mode)
	}
}

type WalletRecord struct {
	Account   string     `json:"account" validate:"required"`
	Authority string     `json:"authority"`
	ChainID   string     `json:"chainId"`
	PublicKey string     `json:"pubkey" validate:"required"`
	Mode      WalletMode `json:"mode" validate:"required"`
	Path      string     `json:"path,omitempty" validate:"required_if=Mode hardware,excluded_unless=Mode hardware"`
}

// WithContext fills the fields a backup may leave implicit from the
// settings that were exported alongside the wallet.
func (w WalletRecord) WithContext(settings *SettingsRecord) WalletRecord {
	if settings == nil {
		return w
	}
	if w.ChainID == "" {
		w.ChainID = settings.ChainID
	}
	if w.Authority == "" && w.Account == settings.Account {
		w.Authority = settings.Authorization
	}
	return w
}

func (w WalletRecord) String() string {
	return fmt.Sprintf("%s@%s (%s)", w.Account, w.Authority, w.ChainID)
}

// KeyRecord holds either the derivation path of a device-backed key or the
// password-locked private key of a software key, never both.
type KeyRecord struct {
	PublicKey    string `json:"pubkey"`
	Path         string `json:"path,omitempty"`
	EncryptedKey []byte `json:"encryptedKey,omitempty"`
}

func (k KeyRecord) IsHardware() bool {
	return k.Path != ""
}

// StorageBlob is opaque application data restored byte for byte.
type StorageBlob json.RawMessage

type ActiveWallet struct {
	ChainID       string `json:"chainId"`
	Account       string `json:"account"`
	Authorization string `json:"authorization"`
}

type NodeValidationFlags struct {
	UseImmediately bool
	SaveAsDefault  bool
}

type SkipReason string

const (
	SkipUnknownSchema  SkipReason = "unknown_schema"
	SkipInvalidRecord  SkipReason = "invalid_record"
	SkipUnsupportedKey SkipReason = "unsupported_key"
	SkipNullEntry      SkipReason = "null_entry"
)

type Skipped struct {
	Kind   string
	Schema string
	ID     string
	Reason SkipReason
	Detail string
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s %s%s: %s %s", s.Kind, s.Schema, s.ID, s.Reason, s.Detail)
}

// Report summarizes what a single import run handed to the store.
type Report struct {
	RunID            string
	Format           Format
	Networks         int
	Wallets          int
	HardwareKeys     int
	SoftwareKeys     int
	StorageRestored  bool
	SettingsImported bool
	Blockchains      []string
	Active           *ActiveWallet
	Skipped          []Skipped
}
