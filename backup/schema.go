package backup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/walletport/backup-sdk/types"
)

const schemaNamespace = "anchor"

type SchemaKind string

const (
	KindNetwork  SchemaKind = "network"
	KindWallet   SchemaKind = "wallet"
	KindSettings SchemaKind = "settings"
	KindStorage  SchemaKind = "storage"
)

// SchemaTag identifies the shape of a single backup record, written as
// "anchor.v2.wallet". The namespace is optional when reading.
type SchemaTag struct {
	Version int
	Kind    SchemaKind
}

func (t SchemaTag) String() string {
	return fmt.Sprintf("%s.v%d.%s", schemaNamespace, t.Version, t.Kind)
}

func ParseSchemaTag(s string) (SchemaTag, error) {
	parts := strings.Split(s, ".")
	switch {
	case len(parts) == 3 && parts[0] == schemaNamespace:
		parts = parts[1:]
	case len(parts) == 2:
	default:
		return SchemaTag{}, fmt.Errorf("malformed schema tag %q", s)
	}

	if !strings.HasPrefix(parts[0], "v") {
		return SchemaTag{}, fmt.Errorf("malformed schema version in %q", s)
	}
	version, err := strconv.Atoi(parts[0][1:])
	if err != nil || version <= 0 {
		return SchemaTag{}, fmt.Errorf("malformed schema version in %q", s)
	}

	return SchemaTag{Version: version, Kind: SchemaKind(parts[1])}, nil
}

var (
	NetworkV1Tag  = SchemaTag{1, KindNetwork}
	NetworkV2Tag  = SchemaTag{2, KindNetwork}
	WalletV1Tag   = SchemaTag{1, KindWallet}
	WalletV2Tag   = SchemaTag{2, KindWallet}
	SettingsV1Tag = SchemaTag{1, KindSettings}
	SettingsV2Tag = SchemaTag{2, KindSettings}
	StorageV2Tag  = SchemaTag{2, KindStorage}
)

// NetworkVariant is one of NetworkV1, NetworkV2.
type NetworkVariant interface {
	networkRecord() types.NetworkRecord
}

type NetworkV1 struct {
	ID      string `mapstructure:"_id"`
	ChainID string `mapstructure:"chainId"`
	Name    string `mapstructure:"name"`
	Node    string `mapstructure:"node"`
	Symbol  string `mapstructure:"symbol"`
}

func (n NetworkV1) networkRecord() types.NetworkRecord {
	return types.NetworkRecord{
		ID:      n.ID,
		ChainID: n.ChainID,
		Name:    n.Name,
		Node:    n.Node,
		Symbol:  n.Symbol,
	}
}

type NetworkV2 struct {
	NetworkV1 `mapstructure:",squash"`
	Testnet   bool `mapstructure:"testnet"`
}

func (n NetworkV2) networkRecord() types.NetworkRecord {
	record := n.NetworkV1.networkRecord()
	record.Testnet = n.Testnet
	return record
}

// WalletVariant is one of WalletV1, WalletV2. V1 wallets predate multi-chain
// support and take their chain from the exported settings.
type WalletVariant interface {
	walletRecord() types.WalletRecord
}

type WalletV1 struct {
	Account   string `mapstructure:"account"`
	Authority string `mapstructure:"authority"`
	Pubkey    string `mapstructure:"pubkey"`
	Mode      string `mapstructure:"mode"`
	Path      string `mapstructure:"path"`
}

func (w WalletV1) walletRecord() types.WalletRecord {
	mode := types.ParseWalletMode(w.Mode)
	record := types.WalletRecord{
		Account:   w.Account,
		Authority: w.Authority,
		PublicKey: w.Pubkey,
		Mode:      mode,
	}
	if mode == types.WalletModeHardware {
		record.Path = w.Path
	}
	return record
}

type WalletV2 struct {
	WalletV1 `mapstructure:",squash"`
	ChainID  string `mapstructure:"chainId"`
}

func (w WalletV2) walletRecord() types.WalletRecord {
	record := w.WalletV1.walletRecord()
	record.ChainID = w.ChainID
	return record
}

// SettingsVariant is one of SettingsV1, SettingsV2.
type SettingsVariant interface {
	settingsVariant()
}

type SettingsV1 struct {
	Node          string         `mapstructure:"node"`
	Account       string         `mapstructure:"account"`
	Authorization string         `mapstructure:"authorization"`
	WalletInit    bool           `mapstructure:"walletInit"`
	Extra         map[string]any `mapstructure:",remain"`
}

func (SettingsV1) settingsVariant() {}

type SettingsV2 struct {
	Node          string         `mapstructure:"node"`
	ChainID       string         `mapstructure:"chainId"`
	Account       string         `mapstructure:"account"`
	Authorization string         `mapstructure:"authorization"`
	Blockchains   []string       `mapstructure:"blockchains"`
	WalletInit    bool           `mapstructure:"walletInit"`
	Extra         map[string]any `mapstructure:",remain"`
}

func (SettingsV2) settingsVariant() {}

func DecodeNetwork(tag SchemaTag, data json.RawMessage) (NetworkVariant, error) {
	switch tag {
	case NetworkV1Tag:
		var v NetworkV1
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case NetworkV2Tag:
		var v NetworkV2
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported schema %s", tag)
	}
}

func DecodeWallet(tag SchemaTag, data json.RawMessage) (WalletVariant, error) {
	switch tag {
	case WalletV1Tag:
		var v WalletV1
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case WalletV2Tag:
		var v WalletV2
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported schema %s", tag)
	}
}

func DecodeSettings(tag SchemaTag, data json.RawMessage) (SettingsVariant, error) {
	switch tag {
	case SettingsV1Tag:
		var v SettingsV1
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case SettingsV2Tag:
		var v SettingsV2
		if err := decodeData(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported schema %s", tag)
	}
}

func decodeData(data json.RawMessage, out any) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: record data: %s", ErrParse, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: record data is null", ErrParse)
	}
	return decodeMap(fields, out)
}

func decodeMap(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("%w: %s", ErrParse, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateRecord(record any) error {
	return validate.Struct(record)
}
