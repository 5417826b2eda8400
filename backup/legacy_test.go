package backup_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
	"github.com/walletport/backup-sdk/backup"
	"github.com/walletport/backup-sdk/internal/crypto"
	"github.com/walletport/backup-sdk/types"
)

const (
	legacyPassword = "correct horse"
	legacySalt     = "c29tZS1zYWx0"
	devKeyWIF      = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
	devKeyPubkey   = "EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
	ledgerPubkey   = "EOS5hardwarePubkeyxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
)

type legacyFixture struct {
	raw  string
	seed string
}

func newLegacyFixture(t *testing.T, nestedKeychain bool, mutate func(doc map[string]any)) legacyFixture {
	t.Helper()

	seed, err := crypto.DeriveSeed(context.Background(), legacyPassword, legacySalt)
	require.NoError(t, err)

	decoded, err := btcutil.DecodeWIF(devKeyWIF)
	require.NoError(t, err)
	privateKey := decoded.PrivKey.Serialize()
	buffer := make([]int, len(privateKey))
	for i, b := range privateKey {
		buffer[i] = int(b)
	}

	encryptedKey := mustEncrypt(t, seed, map[string]any{"type": "Buffer", "data": buffer})
	stringKey := mustEncrypt(t, seed, "not a buffer")

	keychain := map[string]any{
		"keypairs": []any{
			map[string]any{
				"id":         "kp-soft",
				"name":       "hot",
				"privateKey": string(encryptedKey),
				"publicKeys": []any{
					map[string]any{"blockchain": "eth", "key": "0xabc"},
					map[string]any{"blockchain": "eos", "key": devKeyPubkey},
				},
			},
			map[string]any{
				"id":         "kp-ledger",
				"name":       "ledger",
				"external":   map[string]any{"addressIndex": 3},
				"publicKeys": []any{map[string]any{"blockchain": "eos", "key": ledgerPubkey}},
			},
			map[string]any{
				"id":         "kp-eth",
				"publicKeys": []any{map[string]any{"blockchain": "eth", "key": "0xdef"}},
			},
			map[string]any{
				"id":         "kp-odd",
				"privateKey": string(stringKey),
				"publicKeys": []any{map[string]any{"blockchain": "eos", "key": "EOSodd"}},
			},
		},
		"accounts": []any{
			map[string]any{
				"name":          "alice",
				"authority":     "active",
				"publicKey":     devKeyPubkey,
				"keypairUnique": "kp-soft",
				"networkUnique": "eos:eos:c1",
			},
			map[string]any{
				"name":          "bob",
				"authority":     "owner",
				"publicKey":     ledgerPubkey,
				"keypairUnique": "kp-ledger",
				"networkUnique": "eos:eos:c2",
			},
		},
	}

	doc := map[string]any{
		"settings": map[string]any{
			"networks": []any{
				map[string]any{
					"id": "n1", "blockchain": "eos", "chainId": "c1", "name": "EOS Mainnet",
					"protocol": "https", "host": "eos.example", "port": "443",
					"token": map[string]any{"symbol": "EOS"},
				},
				map[string]any{
					"id": "n-eth", "blockchain": "eth", "chainId": "1",
					"protocol": "https", "host": "eth.example", "port": "443",
				},
				map[string]any{
					"id": "n2", "blockchain": "eos", "chainId": "c2", "name": "Local",
					"protocol": "http", "host": "localhost", "port": "8888",
				},
			},
		},
		"keychain": keychain,
	}
	if nestedKeychain {
		doc["keychain"] = string(mustEncrypt(t, seed, keychain))
	}
	if mutate != nil {
		mutate(doc)
	}

	ciphertext := mustEncrypt(t, seed, doc)
	return legacyFixture{
		raw:  string(ciphertext) + "|unused|" + legacySalt,
		seed: seed,
	}
}

func mustEncrypt(t *testing.T, password string, v any) []byte {
	t.Helper()
	plaintext, err := json.Marshal(v)
	require.NoError(t, err)
	envelope, err := crypto.Encrypt(password, plaintext)
	require.NoError(t, err)
	return envelope
}

func TestOpenLegacy(t *testing.T) {
	ctx := context.Background()

	for _, nested := range []bool{false, true} {
		fixture := newLegacyFixture(t, nested, nil)
		require.Equal(t, types.FormatLegacyEncrypted, backup.Detect(fixture.raw))

		env := backup.SplitLegacy(fixture.raw)
		require.Equal(t, legacySalt, env.Salt)

		b, err := backup.OpenLegacy(ctx, fixture.seed, env.Ciphertext)
		require.NoError(t, err)

		networks, skipped := b.Networks()
		require.Empty(t, skipped)
		require.Equal(t, []types.NetworkRecord{
			{ID: "n1", ChainID: "c1", Name: "EOS Mainnet", Node: "https://eos.example", Symbol: "EOS"},
			{ID: "n2", ChainID: "c2", Name: "Local", Node: "http://localhost:8888"},
		}, networks)

		wallets, err := b.Wallets()
		require.NoError(t, err)
		require.Equal(t, []types.WalletRecord{
			{
				Account: "alice", Authority: "active", ChainID: "c1",
				PublicKey: devKeyPubkey, Mode: types.WalletModeHot,
			},
			{
				Account: "bob", Authority: "owner", ChainID: "c2",
				PublicKey: ledgerPubkey, Mode: types.WalletModeHardware, Path: "44'/194'/0'/0/3",
			},
		}, wallets)
	}

	t.Run("wrong password", func(t *testing.T) {
		fixture := newLegacyFixture(t, false, nil)
		seed, err := crypto.DeriveSeed(ctx, "wrong", legacySalt)
		require.NoError(t, err)

		_, err = backup.OpenLegacy(ctx, seed, backup.SplitLegacy(fixture.raw).Ciphertext)
		require.ErrorIs(t, err, crypto.ErrCorrupt)
		require.EqualError(t, err, "CORRUPT: gcm: tag doesn't match")
	})

	t.Run("missing keychain", func(t *testing.T) {
		fixture := newLegacyFixture(t, false, func(doc map[string]any) {
			delete(doc, "keychain")
		})
		_, err := backup.OpenLegacy(ctx, fixture.seed, backup.SplitLegacy(fixture.raw).Ciphertext)
		require.ErrorIs(t, err, backup.ErrParse)
	})

	t.Run("canceled context", func(t *testing.T) {
		fixture := newLegacyFixture(t, false, nil)
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := backup.OpenLegacy(canceled, fixture.seed, backup.SplitLegacy(fixture.raw).Ciphertext)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestLegacyWallets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
	}{
		{
			name: "unknown keypair",
			mutate: func(doc map[string]any) {
				account := firstAccount(doc)
				account["keypairUnique"] = "missing"
			},
		},
		{
			name: "malformed network reference",
			mutate: func(doc map[string]any) {
				account := firstAccount(doc)
				account["networkUnique"] = "eos:eos"
			},
		},
		{
			name: "empty public key",
			mutate: func(doc map[string]any) {
				account := firstAccount(doc)
				account["publicKey"] = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newLegacyFixture(t, false, tt.mutate)
			b, err := backup.OpenLegacy(
				context.Background(), fixture.seed, backup.SplitLegacy(fixture.raw).Ciphertext,
			)
			require.NoError(t, err)

			_, err = b.Wallets()
			require.ErrorIs(t, err, backup.ErrParse)

			rec := newRecorder()
			err = b.Apply(
				context.Background(), backup.Target{Store: fakeStore{rec}},
				legacyPassword, backup.LegacyOptions{}, &types.Report{},
			)
			require.ErrorIs(t, err, backup.ErrParse)
			require.Empty(t, rec.Calls())
		})
	}
}

func TestLegacyApply(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T) *backup.LegacyBackup {
		fixture := newLegacyFixture(t, true, nil)
		b, err := backup.OpenLegacy(ctx, fixture.seed, backup.SplitLegacy(fixture.raw).Ciphertext)
		require.NoError(t, err)
		return b
	}

	t.Run("imports and initializes the wallet", func(t *testing.T) {
		b := open(t)
		rec := newRecorder()
		validator := &fakeValidator{}
		report := &types.Report{}

		err := b.Apply(
			ctx, backup.Target{Store: fakeStore{rec}, Validator: validator},
			legacyPassword, backup.LegacyOptions{KeyWorkers: 2}, report,
		)
		require.NoError(t, err)

		calls := rec.Calls()
		require.Equal(t, []string{"importNetwork", "importNetwork", "importWallet", "importWallet"}, calls[:4])
		require.ElementsMatch(t, []string{"importSoftwareKey", "importHardwarePubkey"}, calls[4:6])
		require.Equal(t, []string{
			"setSetting:walletInit",
			"setSetting:blockchains",
			"setWalletUnlockHash",
			"activateWallet",
		}, calls[6:])

		require.Equal(t, 1, report.SoftwareKeys)
		require.Equal(t, 1, report.HardwareKeys)
		require.Len(t, report.Skipped, 2)
		require.Equal(t, []string{"c1", "c2"}, report.Blockchains)
		require.Equal(t, &types.ActiveWallet{ChainID: "c1", Account: "alice", Authorization: "active"}, report.Active)

		require.Equal(t, legacyPassword, rec.unlock)
		require.Equal(t, true, rec.settings[types.SettingWalletInit])

		keys, err := fakeStore{rec}.KeyStore().GetKeys(ctx)
		require.NoError(t, err)
		for _, k := range keys {
			if k.IsHardware() {
				require.Equal(t, ledgerPubkey, k.PublicKey)
				require.Equal(t, "44'/194'/0'/0/3", k.Path)
				continue
			}
			require.Equal(t, devKeyPubkey, k.PublicKey)
			require.Equal(t, devKeyWIF, string(k.EncryptedKey))
		}

		// The last eos network is validated.
		require.Len(t, validator.calls, 1)
		require.Equal(t, "http://localhost:8888", validator.calls[0].node)
		require.Equal(t, "c2", validator.calls[0].chainID)
	})

	t.Run("invalid network is skipped", func(t *testing.T) {
		fixture := newLegacyFixture(t, false, func(doc map[string]any) {
			settings := doc["settings"].(map[string]any)
			settings["networks"] = append(settings["networks"].([]any), map[string]any{
				"id": "n-bad", "blockchain": "eos", "protocol": "https", "host": "bad.example",
			})
		})
		b, err := backup.OpenLegacy(ctx, fixture.seed, backup.SplitLegacy(fixture.raw).Ciphertext)
		require.NoError(t, err)

		networks, skipped := b.Networks()
		require.Len(t, networks, 2)
		require.Len(t, skipped, 1)
		require.Equal(t, "n-bad", skipped[0].ID)
		require.Equal(t, types.SkipInvalidRecord, skipped[0].Reason)

		rec := newRecorder()
		validator := &fakeValidator{}
		report := &types.Report{}
		err = b.Apply(
			ctx, backup.Target{Store: fakeStore{rec}, Validator: validator},
			legacyPassword, backup.LegacyOptions{}, report,
		)
		require.NoError(t, err)
		require.Equal(t, 2, report.Networks)
		require.Equal(t, 2, rec.Count("importNetwork"))
		require.Contains(t, report.Skipped, skipped[0])

		// The skipped network is never the one validated.
		require.Len(t, validator.calls, 1)
		require.Equal(t, "c2", validator.calls[0].chainID)
	})

	t.Run("separate credential store", func(t *testing.T) {
		b := open(t)
		rec := newRecorder()
		credentials := newRecorder()

		err := b.Apply(
			ctx, backup.Target{Store: fakeStore{rec}, Credentials: fakeCredentials{credentials}},
			legacyPassword, backup.LegacyOptions{}, &types.Report{},
		)
		require.NoError(t, err)
		require.Zero(t, rec.Count("setWalletUnlockHash"))
		require.Equal(t, []string{"setWalletUnlockHash"}, credentials.Calls())
	})

	t.Run("key store failure is fatal", func(t *testing.T) {
		b := open(t)
		rec := newRecorder()
		rec.fail["importHardwarePubkey"] = errors.New("device store locked")

		err := b.Apply(
			ctx, backup.Target{Store: fakeStore{rec}},
			legacyPassword, backup.LegacyOptions{KeyWorkers: 1}, &types.Report{},
		)
		var stepErr *backup.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, "import keys", stepErr.Step)
		require.True(t, stepErr.Applied)
		require.Zero(t, rec.Count("setSetting:walletInit"))
		require.Zero(t, rec.Count("activateWallet"))
	})
}

func firstAccount(doc map[string]any) map[string]any {
	keychain := doc["keychain"].(map[string]any)
	return keychain["accounts"].([]any)[0].(map[string]any)
}
