// Package crypto provides authenticated encryption for files at rest.
// It implements the driven.Cipher interface.
//
// Blobs are laid out as nonce || ciphertext, with a 96-bit random nonce drawn
// per call. Both supported algorithms authenticate the ciphertext, so any
// modification makes decryption fail.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure Cipher implements the interface.
var _ driven.Cipher = (*Cipher)(nil)

// Supported algorithms.
const (
	AlgorithmAESGCM           = "aes-256-gcm"
	AlgorithmChaCha20Poly1305 = "chacha20-poly1305"
)

// KeySize is the key length in bytes for both algorithms.
const KeySize = 32

// NonceSize is the nonce length in bytes.
const NonceSize = 12

// Config configures a Cipher.
type Config struct {
	// Key is 64 hex characters or standard base64 of 32 bytes.
	// Empty generates an ephemeral key.
	Key string

	// Algorithm defaults to AlgorithmAESGCM.
	Algorithm string
}

// Cipher encrypts and decrypts blobs with a process-lifetime key.
type Cipher struct {
	aead      cipher.AEAD
	ephemeral bool
}

// New creates a Cipher. A missing key is replaced with a random one and a
// warning is printed, since data encrypted with it is unreadable after restart.
func New(cfg Config) (*Cipher, error) {
	var (
		key       []byte
		ephemeral bool
		err       error
	)

	if strings.TrimSpace(cfg.Key) == "" {
		key = make([]byte, KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		ephemeral = true
		logger.Notice("no encryption key configured (AES_SECRET_KEY or crypto.key); " +
			"using an ephemeral key, stored originals will be unreadable after restart")
	} else {
		key, err = ParseKey(cfg.Key)
		if err != nil {
			return nil, err
		}
	}

	aead, err := newAEAD(cfg.Algorithm, key)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead, ephemeral: ephemeral}, nil
}

// ParseKey decodes a 32-byte key given as 64 hex characters or base64.
func ParseKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 2*KeySize {
		if key, err := hex.DecodeString(raw); err == nil {
			return key, nil
		}
	}
	if key, err := base64.StdEncoding.DecodeString(raw); err == nil && len(key) == KeySize {
		return key, nil
	}
	return nil, fmt.Errorf("%w: encryption key must be 64 hex characters or base64 of %d bytes",
		domain.ErrInvalidConfig, KeySize)
}

// GenerateKey returns a new random key encoded as hex.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

func newAEAD(algorithm string, key []byte) (cipher.AEAD, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("create aes cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case AlgorithmChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("%w: unknown cipher algorithm %q", domain.ErrInvalidConfig, algorithm)
	}
}

// Ephemeral reports whether the key was generated for this process only.
func (c *Cipher) Ephemeral() bool {
	return c.ephemeral
}

// Encrypt returns nonce || ciphertext for plaintext.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	blob := make([]byte, NonceSize, NonceSize+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(blob); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(blob, blob[:NonceSize], plaintext, nil), nil
}

// Decrypt authenticates and decrypts a blob produced by Encrypt.
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < NonceSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: blob too short", domain.ErrDecrypt)
	}
	plaintext, err := c.aead.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
	if err != nil {
		return nil, domain.ErrDecrypt
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
