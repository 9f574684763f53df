// Package vault provides symmetric encryption for provider secrets stored
// per tenant. Secrets are encrypted with AES-256-GCM; the key is derived by
// hashing the configured master secret. Decrypted values exist only at the
// point of use and are never logged.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/infrastructure/config"
)

var (
	// ErrNoKey means no master secret is configured
	ErrNoKey = errors.New("vault: no master secret configured")
	// ErrDecryptFailed means the blob is malformed or the auth tag did not verify
	ErrDecryptFailed = errors.New("vault: decryption failed")
)

// Vault encrypts and decrypts provider credential material
type Vault struct {
	key            []byte // nil when no master secret is configured
	legacyFallback bool
	logger         *zap.Logger
}

// New creates a vault from configuration. An empty master secret produces a
// pass-through vault: EncryptToken/DecryptToken return their input unchanged
// with a warning, so a deployment can run before key material is provisioned.
func New(cfg config.VaultConfig, logger *zap.Logger) *Vault {
	v := &Vault{
		legacyFallback: cfg.LegacyPlaintextFallback,
		logger:         logger.Named("vault"),
	}
	if cfg.MasterSecret != "" {
		key := sha256.Sum256([]byte(cfg.MasterSecret))
		v.key = key[:]
	}
	return v
}

// Encrypt encrypts plaintext with AES-256-GCM using a fresh random nonce.
// The returned blob is base64(nonce || ciphertext+tag).
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if v.key == nil {
		return "", ErrNoKey
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Returns ErrDecryptFailed when the blob is
// malformed or the authentication tag does not verify.
func (v *Vault) Decrypt(blob string) (string, error) {
	if v.key == nil {
		return "", ErrNoKey
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", ErrDecryptFailed
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrDecryptFailed
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// EncryptToken encrypts a token for storage. When no key is configured the
// token is returned unchanged with a warning so pre-provisioning deployments
// keep working.
func (v *Vault) EncryptToken(token string) string {
	if token == "" {
		return ""
	}
	if v.key == nil {
		v.logger.Warn("no master secret configured, storing token as plaintext")
		return token
	}
	blob, err := v.Encrypt(token)
	if err != nil {
		v.logger.Error("token encryption failed", zap.Error(err))
		return token
	}
	return blob
}

// DecryptToken decrypts a stored token. When decryption fails and legacy
// fallback is enabled, the input is returned unchanged on the assumption that
// pre-migration rows may still hold plaintext. This is a compatibility shim,
// not a security boundary; the fallback is logged on every use so it can be
// disabled once migration completes.
func (v *Vault) DecryptToken(blob string) (string, error) {
	if blob == "" {
		return "", nil
	}
	if v.key == nil {
		v.logger.Warn("no master secret configured, returning stored token as-is")
		return blob, nil
	}
	plaintext, err := v.Decrypt(blob)
	if err != nil {
		if v.legacyFallback {
			v.logger.Warn("decrypt failed, legacy plaintext fallback in effect")
			return blob, nil
		}
		return "", err
	}
	return plaintext, nil
}
