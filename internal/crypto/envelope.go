package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrCorrupt is returned when the authentication tag of an envelope does
	// not verify, which in practice means a wrong password. Its message is
	// matched verbatim by callers and must stay as is.
	ErrCorrupt         = errors.New("CORRUPT: gcm: tag doesn't match")
	ErrInvalidEnvelope = errors.New("invalid envelope")
)

const (
	defaultIter    = 10000
	defaultKeySize = 128
	defaultTagSize = 64

	minIVLen = 8
	maxIVLen = 16
	saltLen  = 8
)

// Envelope is the JSON ciphertext container written by the predecessor
// wallet. Binary fields are base64 encoded. Mode, Cipher and V are carried
// for compatibility only: decryption is always AES-GCM.
type Envelope struct {
	IV     string `json:"iv"`
	V      int    `json:"v,omitempty"`
	Iter   int    `json:"iter,omitempty"`
	KS     int    `json:"ks,omitempty"`
	TS     int    `json:"ts,omitempty"`
	Mode   string `json:"mode,omitempty"`
	AData  string `json:"adata"`
	Cipher string `json:"cipher,omitempty"`
	Salt   string `json:"salt"`
	CT     string `json:"ct"`
}

func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvelope, err)
	}
	if env.IV == "" || env.Salt == "" || env.CT == "" {
		return nil, fmt.Errorf("%w: missing iv, salt or ct", ErrInvalidEnvelope)
	}
	return &env, nil
}

// Decrypt opens the envelope in data with password.
func Decrypt(password string, data []byte) ([]byte, error) {
	env, err := ParseEnvelope(data)
	if err != nil {
		return nil, err
	}
	return env.Decrypt(password)
}

func (e *Envelope) Decrypt(password string) ([]byte, error) {
	iter, keyLen, tagLen, err := e.params()
	if err != nil {
		return nil, err
	}

	iv, err := decodeBase64(e.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %s", ErrInvalidEnvelope, err)
	}
	if len(iv) < minIVLen || len(iv) > maxIVLen {
		return nil, fmt.Errorf("%w: iv length %d", ErrInvalidEnvelope, len(iv))
	}
	salt, err := decodeBase64(e.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %s", ErrInvalidEnvelope, err)
	}
	ct, err := decodeBase64(e.CT)
	if err != nil {
		return nil, fmt.Errorf("%w: ct: %s", ErrInvalidEnvelope, err)
	}
	if len(ct) < tagLen {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrInvalidEnvelope)
	}
	adata, err := decodeBase64(e.AData)
	if err != nil {
		return nil, fmt.Errorf("%w: adata: %s", ErrInvalidEnvelope, err)
	}

	key := pbkdf2.Key([]byte(password), salt, iter, keyLen, sha256.New)
	defer clear(key)

	aead, err := newGCM(key, len(iv))
	if err != nil {
		return nil, err
	}

	// Go's GCM refuses tags shorter than 12 bytes, so the truncated tag is
	// checked by hand: recover the CTR keystream by sealing zeros, then
	// recompute the full tag over the recovered plaintext.
	bodyLen := len(ct) - tagLen
	body, tag := ct[:bodyLen], ct[bodyLen:]

	keystream := aead.Seal(nil, iv, make([]byte, bodyLen), adata)[:bodyLen]
	plaintext := make([]byte, bodyLen)
	subtle.XORBytes(plaintext, body, keystream)

	expected := aead.Seal(nil, iv, plaintext, adata)[bodyLen:][:tagLen]
	if subtle.ConstantTimeCompare(expected, tag) != 1 {
		clear(plaintext)
		return nil, ErrCorrupt
	}

	return plaintext, nil
}

// Encrypt seals plaintext into an envelope with the predecessor's default
// parameters.
func Encrypt(password string, plaintext []byte) ([]byte, error) {
	iv := make([]byte, maxIVLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, defaultIter, defaultKeySize/8, sha256.New)
	defer clear(key)

	aead, err := newGCM(key, len(iv))
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, iv, plaintext, nil)
	ct := sealed[:len(plaintext)+defaultTagSize/8]

	return json.Marshal(Envelope{
		IV:     base64.StdEncoding.EncodeToString(iv),
		V:      1,
		Iter:   defaultIter,
		KS:     defaultKeySize,
		TS:     defaultTagSize,
		Mode:   "gcm",
		Cipher: "aes",
		Salt:   base64.StdEncoding.EncodeToString(salt),
		CT:     base64.StdEncoding.EncodeToString(ct),
	})
}

func (e *Envelope) params() (iter, keyLen, tagLen int, err error) {
	iter, ks, ts := e.Iter, e.KS, e.TS
	if iter == 0 {
		iter = defaultIter
	}
	if ks == 0 {
		ks = defaultKeySize
	}
	if ts == 0 {
		ts = defaultTagSize
	}

	if iter < 0 {
		return 0, 0, 0, fmt.Errorf("%w: iter %d", ErrInvalidEnvelope, iter)
	}
	switch ks {
	case 128, 192, 256:
	default:
		return 0, 0, 0, fmt.Errorf("%w: key size %d", ErrInvalidEnvelope, ks)
	}
	switch ts {
	case 64, 96, 128:
	default:
		return 0, 0, 0, fmt.Errorf("%w: tag size %d", ErrInvalidEnvelope, ts)
	}

	return iter, ks / 8, ts / 8, nil
}

func newGCM(key []byte, nonceSize int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// decodeBase64 accepts both padded and unpadded standard base64.
func decodeBase64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
