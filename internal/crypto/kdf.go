package crypto

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters used by the predecessor wallet when exporting backups.
// They are part of the backup format and must not be tuned.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 16
)

var ErrKeyDerivation = errors.New("key derivation failed")

// DeriveSeed turns a backup password and salt into the hex seed used as the
// passphrase of every encrypted envelope in a legacy backup.
//
// The scrypt output is used as BIP-39 entropy, expanded to a mnemonic and
// then to the standard BIP-39 seed with an empty passphrase. The work runs on
// its own goroutine; DeriveSeed returns early if ctx is done.
func DeriveSeed(ctx context.Context, password, salt string) (string, error) {
	type result struct {
		seed string
		err  error
	}

	resultCh := make(chan result, 1)
	go func() {
		seed, err := deriveSeed(password, salt)
		resultCh <- result{seed, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		return res.seed, res.err
	}
}

func deriveSeed(password, salt string) (string, error) {
	salt = strings.TrimSpace(salt)
	if salt == "" {
		return "", fmt.Errorf("%w: missing salt", ErrKeyDerivation)
	}
	if !utf8.ValidString(salt) {
		return "", fmt.Errorf("%w: salt is not valid utf-8", ErrKeyDerivation)
	}

	entropy, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrKeyDerivation, err)
	}
	defer clear(entropy)

	return seedFromEntropy(entropy)
}

func seedFromEntropy(entropy []byte) (string, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrKeyDerivation, err)
	}
	seed := bip39.NewSeed(mnemonic, "")
	defer clear(seed)

	return hex.EncodeToString(seed), nil
}
