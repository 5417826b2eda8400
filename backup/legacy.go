package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ccoveille/go-safecast"
	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/internal/crypto"
	"github.com/walletport/backup-sdk/types"
	"golang.org/x/sync/errgroup"
)

const (
	hardwarePathTemplate = "44'/194'/0'/0/%d"
	bufferPayloadType    = "Buffer"
	defaultKeyWorkers    = 4
)

type legacyToken struct {
	Symbol string `mapstructure:"symbol"`
}

type legacyNetwork struct {
	ID         string       `mapstructure:"id"`
	Blockchain string       `mapstructure:"blockchain"`
	ChainID    string       `mapstructure:"chainId"`
	Name       string       `mapstructure:"name"`
	Protocol   string       `mapstructure:"protocol"`
	Host       string       `mapstructure:"host"`
	Port       string       `mapstructure:"port"`
	Token      *legacyToken `mapstructure:"token"`
}

type legacyAccount struct {
	Name          string `mapstructure:"name"`
	Authority     string `mapstructure:"authority"`
	PublicKey     string `mapstructure:"publicKey"`
	KeypairUnique string `mapstructure:"keypairUnique"`
	NetworkUnique string `mapstructure:"networkUnique"`
}

type legacyExternal struct {
	AddressIndex int64 `mapstructure:"addressIndex"`
}

type legacyPublicKey struct {
	Blockchain string `mapstructure:"blockchain"`
	Key        string `mapstructure:"key"`
}

type legacyKeypair struct {
	ID         string            `mapstructure:"id"`
	Name       string            `mapstructure:"name"`
	External   *legacyExternal   `mapstructure:"external"`
	PublicKeys []legacyPublicKey `mapstructure:"publicKeys"`
	PrivateKey string            `mapstructure:"privateKey"`
}

func (k legacyKeypair) nativePublicKey() (string, bool) {
	for _, pk := range k.PublicKeys {
		if pk.Blockchain == types.NativeBlockchain && pk.Key != "" {
			return pk.Key, true
		}
	}
	return "", false
}

func (k legacyKeypair) hardwarePath() (string, error) {
	index, err := safecast.ToUint32(k.External.AddressIndex)
	if err != nil {
		return "", fmt.Errorf("%w: keypair %s address index: %s", ErrParse, k.ID, err)
	}
	return fmt.Sprintf(hardwarePathTemplate, index), nil
}

type legacyKeychain struct {
	Accounts []legacyAccount `mapstructure:"accounts"`
	Keypairs []legacyKeypair `mapstructure:"keypairs"`
}

type legacySettings struct {
	Networks []legacyNetwork `mapstructure:"networks"`
}

// legacyPrivateKey is a serialized Node.js Buffer.
type legacyPrivateKey struct {
	Type string `json:"type"`
	Data []int  `json:"data"`
}

// LegacyBackup is a decrypted legacy export together with the seed that
// opened it; the seed is needed again for every software private key.
type LegacyBackup struct {
	seed     string
	settings legacySettings
	keychain legacyKeychain
}

// LegacyOptions tunes how a legacy backup is applied.
type LegacyOptions struct {
	KeyWorkers int
}

// OpenLegacy decrypts the ciphertext of a legacy export and decodes it. The
// keychain may itself be an encrypted envelope, as exports carry it.
func OpenLegacy(ctx context.Context, seed, ciphertext string) (*LegacyBackup, error) {
	plaintext, err := decrypt(ctx, seed, []byte(ciphertext))
	if err != nil {
		return nil, err
	}
	defer clear(plaintext)

	var doc struct {
		Keychain json.RawMessage `json:"keychain"`
		Settings map[string]any  `json:"settings"`
	}
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("%w: decrypted backup: %s", ErrParse, err)
	}

	b := &LegacyBackup{seed: seed}
	if doc.Settings != nil {
		if err := decodeMap(doc.Settings, &b.settings); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}

	keychain, err := openKeychain(ctx, seed, doc.Keychain)
	if err != nil {
		return nil, err
	}
	if err := decodeMap(keychain, &b.keychain); err != nil {
		return nil, fmt.Errorf("keychain: %w", err)
	}

	return b, nil
}

func openKeychain(ctx context.Context, seed string, raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: backup has no keychain", ErrParse)
	}

	if raw[0] == '"' {
		var envelope string
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%w: keychain: %s", ErrParse, err)
		}
		plaintext, err := decrypt(ctx, seed, []byte(envelope))
		if err != nil {
			return nil, fmt.Errorf("keychain: %w", err)
		}
		defer clear(plaintext)
		raw = plaintext
	}

	var keychain map[string]any
	if err := json.Unmarshal(raw, &keychain); err != nil {
		return nil, fmt.Errorf("%w: keychain: %s", ErrParse, err)
	}
	return keychain, nil
}

// Networks returns the valid native chain networks of the backup, along with
// the native ones that were left out.
func (b *LegacyBackup) Networks() ([]types.NetworkRecord, []types.Skipped) {
	networks := make([]types.NetworkRecord, 0, len(b.settings.Networks))
	var skipped []types.Skipped
	for _, n := range b.settings.Networks {
		if n.Blockchain != types.NativeBlockchain {
			continue
		}
		network := types.NetworkRecord{
			ID:      n.ID,
			ChainID: n.ChainID,
			Name:    n.Name,
			Node:    nodeURL(n.Protocol, n.Host, n.Port),
		}
		if n.Token != nil {
			network.Symbol = n.Token.Symbol
		}
		if err := validateRecord(network); err != nil {
			skipped = append(skipped, types.Skipped{
				Kind: string(KindNetwork), ID: n.ID,
				Reason: types.SkipInvalidRecord, Detail: err.Error(),
			})
			continue
		}
		networks = append(networks, network)
	}
	return networks, skipped
}

// Wallets converts every account to a wallet record, one per account.
func (b *LegacyBackup) Wallets() ([]types.WalletRecord, error) {
	wallets := make([]types.WalletRecord, 0, len(b.keychain.Accounts))
	for _, account := range b.keychain.Accounts {
		keypair, ok := b.keypair(account.KeypairUnique)
		if !ok {
			return nil, fmt.Errorf(
				"%w: account %s references unknown keypair %s",
				ErrParse, account.Name, account.KeypairUnique,
			)
		}

		segments := strings.Split(account.NetworkUnique, ":")
		if len(segments) < 3 || segments[2] == "" {
			return nil, fmt.Errorf(
				"%w: account %s has malformed network reference %q",
				ErrParse, account.Name, account.NetworkUnique,
			)
		}

		wallet := types.WalletRecord{
			Account:   account.Name,
			Authority: account.Authority,
			ChainID:   segments[2],
			PublicKey: account.PublicKey,
			Mode:      types.WalletModeHot,
		}
		if keypair.External != nil {
			path, err := keypair.hardwarePath()
			if err != nil {
				return nil, err
			}
			wallet.Mode = types.WalletModeHardware
			wallet.Path = path
		}
		if err := validateRecord(wallet); err != nil {
			return nil, fmt.Errorf("%w: account %s: %s", ErrParse, account.Name, err)
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (b *LegacyBackup) keypair(id string) (legacyKeypair, bool) {
	for _, k := range b.keychain.Keypairs {
		if k.ID == id {
			return k, true
		}
	}
	return legacyKeypair{}, false
}

// Apply imports networks, wallets and keys, then initializes the wallet:
// enabled chains, unlock credential, node validation and active account.
// Keypairs are imported concurrently and all of them settle before the
// wallet is initialized.
func (b *LegacyBackup) Apply(
	ctx context.Context, target Target, password string, opts LegacyOptions, report *types.Report,
) error {
	a := &applier{target: target}
	store := target.Store

	wallets, err := b.Wallets()
	if err != nil {
		return a.fail("convert accounts", err)
	}

	networks, skipped := b.Networks()
	report.Skipped = append(report.Skipped, skipped...)
	var lastNetwork *types.NetworkRecord
	for _, network := range networks {
		if err := a.do("import network", func() error {
			return store.NetworkStore().ImportNetwork(ctx, network)
		}); err != nil {
			return err
		}
		lastNetwork = &network
		report.Networks++
	}

	chainIDs := make([]string, 0, len(wallets))
	for _, wallet := range wallets {
		if err := a.do("import wallet", func() error {
			return store.WalletStore().ImportWallet(ctx, wallet, nil)
		}); err != nil {
			return err
		}
		chainIDs = append(chainIDs, wallet.ChainID)
		report.Wallets++
	}
	chainIDs = types.MergeChainIDs(chainIDs)

	if err := b.importKeys(ctx, a, password, opts, report); err != nil {
		return err
	}

	if err := a.do("initialize wallet", func() error {
		return store.SettingsStore().SetSetting(ctx, types.SettingWalletInit, true)
	}); err != nil {
		return err
	}
	if err := a.do("enable blockchains", func() error {
		return store.SettingsStore().SetSetting(ctx, types.SettingBlockchains, chainIDs)
	}); err != nil {
		return err
	}
	report.Blockchains = chainIDs

	credentials := target.Credentials
	if credentials == nil {
		credentials = store.CredentialStore()
	}
	if err := a.do("store unlock credential", func() error {
		return credentials.SetWalletUnlockHash(ctx, password)
	}); err != nil {
		return err
	}

	if lastNetwork != nil {
		a.validateNode(ctx, lastNetwork.Node, lastNetwork.ChainID)
	} else {
		log.Warn("legacy backup has no native networks, skipping node validation")
	}

	if len(wallets) == 0 {
		return nil
	}
	recent := wallets[0]
	if err := a.do("activate wallet", func() error {
		return store.WalletStore().ActivateWallet(ctx, recent.ChainID, recent.Account, recent.Authority)
	}); err != nil {
		return err
	}
	report.Active = &types.ActiveWallet{
		ChainID:       recent.ChainID,
		Account:       recent.Account,
		Authorization: recent.Authority,
	}

	return nil
}

func (b *LegacyBackup) importKeys(
	ctx context.Context, a *applier, password string, opts LegacyOptions, report *types.Report,
) error {
	workers := opts.KeyWorkers
	if workers <= 0 {
		workers = defaultKeyWorkers
	}

	var mu sync.Mutex
	skip := func(keypair legacyKeypair, reason types.SkipReason, detail string) {
		log.WithField("keypair", keypair.ID).Warnf("skipping keypair: %s %s", reason, detail)
		mu.Lock()
		defer mu.Unlock()
		report.Skipped = append(report.Skipped, types.Skipped{
			Kind: "keypair", ID: keypair.ID, Reason: reason, Detail: detail,
		})
	}
	imported := func(hardware bool) {
		mu.Lock()
		defer mu.Unlock()
		a.applied = true
		if hardware {
			report.HardwareKeys++
		} else {
			report.SoftwareKeys++
		}
	}

	keyStore := a.target.Store.KeyStore()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, keypair := range b.keychain.Keypairs {
		g.Go(func() error {
			pubkey, ok := keypair.nativePublicKey()
			if !ok {
				skip(keypair, types.SkipUnsupportedKey, "no native public key")
				return nil
			}

			if keypair.External != nil {
				path, err := keypair.hardwarePath()
				if err != nil {
					skip(keypair, types.SkipInvalidRecord, err.Error())
					return nil
				}
				if err := keyStore.ImportHardwarePubkey(gctx, pubkey, path); err != nil {
					return fmt.Errorf("keypair %s: %w", keypair.ID, err)
				}
				imported(true)
				return nil
			}

			wif, err := b.privateKey(gctx, keypair, pubkey)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				skip(keypair, types.SkipUnsupportedKey, err.Error())
				return nil
			}
			if err := keyStore.ImportSoftwareKey(gctx, password, wif, pubkey); err != nil {
				return fmt.Errorf("keypair %s: %w", keypair.ID, err)
			}
			imported(false)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		mu.Lock()
		defer mu.Unlock()
		return a.fail("import keys", err)
	}
	return nil
}

// privateKey decrypts a software keypair's private key and encodes it as WIF.
func (b *LegacyBackup) privateKey(ctx context.Context, keypair legacyKeypair, pubkey string) (string, error) {
	if keypair.PrivateKey == "" {
		return "", fmt.Errorf("keypair has no private key")
	}
	plaintext, err := decrypt(ctx, b.seed, []byte(keypair.PrivateKey))
	if err != nil {
		return "", err
	}
	defer clear(plaintext)

	var payload legacyPrivateKey
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return "", fmt.Errorf("undecodable private key payload: %s", err)
	}
	if payload.Type != bufferPayloadType {
		return "", fmt.Errorf("unsupported private key payload %q", payload.Type)
	}

	raw := make([]byte, len(payload.Data))
	for i, v := range payload.Data {
		if v < 0 || v > 0xff {
			return "", fmt.Errorf("private key buffer holds non byte value %d", v)
		}
		raw[i] = byte(v)
	}
	defer clear(raw)

	wif, err := crypto.PrivateKeyToWIF(raw)
	if err != nil {
		return "", err
	}
	if derived, err := crypto.PublicKeyString(raw); err == nil && derived != pubkey {
		log.WithField("keypair", keypair.ID).Warnf(
			"private key derives %s but backup lists %s", derived, pubkey,
		)
	}
	return wif, nil
}

// decrypt runs envelope decryption off the caller's goroutine so a canceled
// ctx is honoured while pbkdf2 is running.
func decrypt(ctx context.Context, seed string, envelope []byte) ([]byte, error) {
	type result struct {
		plaintext []byte
		err       error
	}

	resultCh := make(chan result, 1)
	go func() {
		plaintext, err := crypto.Decrypt(seed, envelope)
		resultCh <- result{plaintext, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.plaintext, res.err
	}
}

// nodeURL builds protocol://host, keeping the port only when it is not the
// protocol's default.
func nodeURL(protocol, host, port string) string {
	if protocol == "" {
		protocol = "https"
	}
	url := fmt.Sprintf("%s://%s", protocol, host)
	switch {
	case port == "", port == "0":
	case protocol == "https" && port == "443":
	case protocol == "http" && port == "80":
	case strings.Contains(host, ":"):
	default:
		url += ":" + port
	}
	return url
}
