package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	lockIterations = 10000
	lockKeySize    = 32
	lockSaltSize   = 32
)

var ErrInvalidPassword = errors.New("invalid password")

// EncryptAES256 locks plaintext with password. The output is
// nonce || ciphertext || salt.
func EncryptAES256(plaintext, password []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("missing plaintext private key")
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("missing encryption password")
	}

	key, salt, err := deriveKey(password, nil)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	ciphertext = append(ciphertext, salt...)

	return ciphertext, nil
}

func DecryptAES256(encrypted, password []byte) ([]byte, error) {
	if len(encrypted) == 0 {
		return nil, fmt.Errorf("missing encrypted private key")
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("missing decryption password")
	}
	if len(encrypted) < lockSaltSize {
		return nil, fmt.Errorf("encrypted private key too short")
	}

	salt := encrypted[len(encrypted)-lockSaltSize:]
	data := encrypted[:len(encrypted)-lockSaltSize]

	key, _, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted private key too short")
	}
	nonce, text := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	// #nosec G407
	plaintext, err := gcm.Open(nil, nonce, text, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

// HashPassword returns salt || pbkdf2(password, salt), the wallet unlock
// credential.
func HashPassword(password []byte) ([]byte, error) {
	key, salt, err := deriveKey(password, nil)
	if err != nil {
		return nil, err
	}
	return append(salt, key...), nil
}

func VerifyPassword(password, hash []byte) bool {
	if len(hash) != lockSaltSize+lockKeySize {
		return false
	}
	key, _, err := deriveKey(password, hash[:lockSaltSize])
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, hash[lockSaltSize:]) == 1
}

// deriveKey derives a 32 byte key from password, generating a fresh salt
// when none is given.
func deriveKey(password, salt []byte) ([]byte, []byte, error) {
	if salt == nil {
		salt = make([]byte, lockSaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, err
		}
	}
	key := pbkdf2.Key(password, salt, lockIterations, lockKeySize, sha256.New)
	return key, salt, nil
}
