package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/types"
)

type rawRecord struct {
	Schema string          `json:"schema"`
	Data   json.RawMessage `json:"data"`
}

type rawDocument struct {
	Networks []*rawRecord `json:"networks"`
	Wallets  []*rawRecord `json:"wallets"`
	Settings *rawRecord   `json:"settings"`
	Storage  *rawRecord   `json:"storage"`
}

// NativeBackup is a decoded native backup, ready to be applied. Records with
// unknown schemas or failing validation are listed in Skipped.
type NativeBackup struct {
	Networks []types.NetworkRecord
	Wallets  []types.WalletRecord
	Storage  types.StorageBlob
	Settings *types.SettingsRecord
	Skipped  []types.Skipped
}

// ParseNative decodes the whole document before anything is applied, so a
// malformed backup never leaves the store half written.
func ParseNative(raw string, defaultChainID string) (*NativeBackup, error) {
	var doc rawDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: backup is not a json object: %s", ErrParse, err)
	}
	if doc.Networks == nil && doc.Wallets == nil && doc.Settings == nil && doc.Storage == nil {
		return nil, fmt.Errorf("%w: backup has no networks, wallets, settings or storage", ErrParse)
	}

	b := &NativeBackup{}

	// Settings first: they provide the context wallets are imported with.
	if doc.Settings != nil {
		if tag, ok := b.recognize(KindSettings, doc.Settings, "", SettingsV1Tag, SettingsV2Tag); ok {
			variant, err := DecodeSettings(tag, doc.Settings.Data)
			if err != nil {
				return nil, fmt.Errorf("settings: %w", err)
			}
			settings := MigrateSettings(variant, defaultChainID)
			b.Settings = &settings
		}
	}

	for i, record := range doc.Networks {
		id := fmt.Sprintf("#%d", i)
		tag, ok := b.recognize(KindNetwork, record, id, NetworkV1Tag, NetworkV2Tag)
		if !ok {
			continue
		}
		variant, err := DecodeNetwork(tag, record.Data)
		if err != nil {
			return nil, fmt.Errorf("network %s: %w", id, err)
		}
		network := variant.networkRecord()
		if err := validateRecord(network); err != nil {
			b.skip(KindNetwork, record.Schema, id, types.SkipInvalidRecord, err.Error())
			continue
		}
		b.Networks = append(b.Networks, network)
	}

	for i, record := range doc.Wallets {
		id := fmt.Sprintf("#%d", i)
		tag, ok := b.recognize(KindWallet, record, id, WalletV1Tag, WalletV2Tag)
		if !ok {
			continue
		}
		variant, err := DecodeWallet(tag, record.Data)
		if err != nil {
			return nil, fmt.Errorf("wallet %s: %w", id, err)
		}
		wallet := variant.walletRecord().WithContext(b.Settings)
		if err := validateRecord(wallet); err != nil {
			b.skip(KindWallet, record.Schema, id, types.SkipInvalidRecord, err.Error())
			continue
		}
		b.Wallets = append(b.Wallets, wallet)
	}

	if doc.Storage != nil {
		if _, ok := b.recognize(KindStorage, doc.Storage, "", StorageV2Tag); ok {
			data := bytes.TrimSpace(doc.Storage.Data)
			if len(data) == 0 {
				return nil, fmt.Errorf("%w: storage has no data", ErrParse)
			}
			b.Storage = types.StorageBlob(data)
		}
	}

	return b, nil
}

// ChainIDs is the union of the chains referenced by the backup's wallets.
func (b *NativeBackup) ChainIDs() []string {
	ids := make([]string, 0, len(b.Wallets))
	for _, w := range b.Wallets {
		ids = append(ids, w.ChainID)
	}
	return types.MergeChainIDs(ids)
}

// Apply hands the backup to the target in dependency order: networks,
// wallets, storage, enabled chains, settings, node validation and finally
// the active account. It stops at the first store error without undoing
// earlier steps.
func (b *NativeBackup) Apply(ctx context.Context, target Target, report *types.Report) error {
	a := &applier{target: target}
	store := target.Store

	report.Skipped = append(report.Skipped, b.Skipped...)

	for _, network := range b.Networks {
		if err := a.do("import network", func() error {
			return store.NetworkStore().ImportNetwork(ctx, network)
		}); err != nil {
			return err
		}
		report.Networks++
	}

	for _, wallet := range b.Wallets {
		if err := a.do("import wallet", func() error {
			return store.WalletStore().ImportWallet(ctx, wallet, b.Settings)
		}); err != nil {
			return err
		}
		report.Wallets++
	}

	if b.Storage != nil {
		if err := a.do("restore storage", func() error {
			return store.StorageStore().SetStorage(ctx, b.Storage)
		}); err != nil {
			return err
		}
		report.StorageRestored = true
	}

	chainIDs := b.ChainIDs()
	if err := a.do("enable blockchains", func() error {
		return store.SettingsStore().SetSetting(ctx, types.SettingBlockchains, chainIDs)
	}); err != nil {
		return err
	}
	report.Blockchains = chainIDs

	if b.Settings == nil {
		log.Warn("backup carries no usable settings, skipping activation")
		return nil
	}

	settings := *b.Settings
	settings.Blockchains = types.MergeChainIDs(chainIDs, settings.Blockchains)
	if err := a.do("import settings", func() error {
		return store.SettingsStore().SetSettings(ctx, settings)
	}); err != nil {
		return err
	}
	report.SettingsImported = true
	report.Blockchains = settings.Blockchains

	a.validateNode(ctx, settings.Node, settings.ChainID)

	if settings.Account == "" {
		return nil
	}
	if err := a.do("activate wallet", func() error {
		return store.WalletStore().ActivateWallet(
			ctx, settings.ChainID, settings.Account, settings.Authorization,
		)
	}); err != nil {
		return err
	}
	report.Active = &types.ActiveWallet{
		ChainID:       settings.ChainID,
		Account:       settings.Account,
		Authorization: settings.Authorization,
	}

	return nil
}

// recognize checks a record's schema against the accepted tags, recording
// a skip when it does not match.
func (b *NativeBackup) recognize(
	kind SchemaKind, record *rawRecord, id string, accepted ...SchemaTag,
) (SchemaTag, bool) {
	if record == nil {
		b.skip(kind, "", id, types.SkipNullEntry, "")
		return SchemaTag{}, false
	}
	tag, err := ParseSchemaTag(record.Schema)
	if err != nil {
		b.skip(kind, record.Schema, id, types.SkipUnknownSchema, err.Error())
		return SchemaTag{}, false
	}
	for _, t := range accepted {
		if tag == t {
			return tag, true
		}
	}
	b.skip(kind, record.Schema, id, types.SkipUnknownSchema, "")
	return SchemaTag{}, false
}

func (b *NativeBackup) skip(kind SchemaKind, schema, id string, reason types.SkipReason, detail string) {
	skipped := types.Skipped{
		Kind: string(kind), Schema: schema, ID: id, Reason: reason, Detail: detail,
	}
	log.Debugf("skipping backup record: %s", skipped)
	b.Skipped = append(b.Skipped, skipped)
}
