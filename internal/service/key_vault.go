package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"
)

// vaultKeyInfo binds the derived data key to its purpose so the configured
// master key never encrypts anything directly.
const vaultKeyInfo = "agent-chain-wallet/key-vault/v1"

// AESKeyVault implements ports.KeyVault using AES-256-GCM under a key
// derived from the master key with HKDF-SHA256. The handle is
// passed as additional authenticated data, so a sealed key copied onto
// another agent's row fails to open.
type AESKeyVault struct {
	aead cipher.AEAD
}

// NewAESKeyVault creates a vault from a 64-character hex key (32 bytes decoded).
func NewAESKeyVault(hexKey string) (*AESKeyVault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}

	dataKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(vaultKeyInfo)), dataKey); err != nil {
		return nil, fmt.Errorf("deriving data key: %w", err)
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &AESKeyVault{aead: aead}, nil
}

// Seal encrypts the raw 32-byte private key.
// Returns hex-encoded string: nonce(12) + ciphertext + tag.
func (v *AESKeyVault) Seal(handle string, key *ecdsa.PrivateKey) (string, error) {
	if key == nil {
		return "", errors.New("nil private key")
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	raw := crypto.FromECDSA(key)
	sealed := v.aead.Seal(nonce, nonce, raw, []byte(handle))
	return hex.EncodeToString(sealed), nil
}

// Open decrypts a sealed key for handle.
func (v *AESKeyVault) Open(handle string, sealed string) (*ecdsa.PrivateKey, error) {
	data, err := hex.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decoding sealed key: %w", err)
	}

	nonceSize := v.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("sealed key too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	raw, err := v.aead.Open(nil, nonce, ciphertext, []byte(handle))
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}
