package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const pubKeyPrefix = "EOS"

// PrivateKeyToWIF encodes a raw secp256k1 private key in the legacy
// (uncompressed, 0x80 version) WIF form the wallet stores keys in.
func PrivateKeyToWIF(raw []byte) (string, error) {
	if len(raw) != btcec.PrivKeyBytesLen {
		return "", fmt.Errorf("invalid private key length %d", len(raw))
	}
	prvkey, _ := btcec.PrivKeyFromBytes(raw)
	wif, err := btcutil.NewWIF(prvkey, &chaincfg.MainNetParams, false)
	if err != nil {
		return "", err
	}
	return wif.String(), nil
}

// PublicKeyString returns the legacy EOS public key string of a raw private
// key: the compressed point followed by a 4 byte ripemd160 checksum, base58
// encoded and prefixed.
func PublicKeyString(raw []byte) (string, error) {
	if len(raw) != btcec.PrivKeyBytesLen {
		return "", fmt.Errorf("invalid private key length %d", len(raw))
	}
	_, pubkey := btcec.PrivKeyFromBytes(raw)
	compressed := pubkey.SerializeCompressed()

	hasher := ripemd160.New()
	hasher.Write(compressed)
	checksum := hasher.Sum(nil)[:4]

	return pubKeyPrefix + base58.Encode(append(compressed, checksum...)), nil
}
