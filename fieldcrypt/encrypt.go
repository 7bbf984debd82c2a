// Package fieldcrypt encrypts individual column values with AES-256-GCM.
//
// Encrypted values are stored as text:
//
//	<ivHex>:<ciphertextAndTagHex>      current, 12-byte iv
//	<ivHex>:<tagHex>:<ciphertextHex>   legacy, 16-byte iv, read only
//
// Anything else is treated as a plaintext value written before encryption
// was enabled and is returned unchanged by the decrypt functions.
package fieldcrypt

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/srwicak/freelance-directory/config"
)

// Sizes of the serialized parts, in bytes.
const (
	NonceSize       = 12
	LegacyNonceSize = 16
	TagSize         = 16
)

// Cipher encrypts and decrypts field values under one key.
// It is immutable and safe for concurrent use.
type Cipher struct {
	block cipher.Block
	gcm   cipher.AEAD
}

// New returns a Cipher for a 32-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, config.Malformed(config.KeyEncryptionKey,
			fmt.Sprintf("must be %d bytes, got %d", KeySize, len(key)))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{block: block, gcm: gcm}, nil
}

// EncryptField encrypts plaintext under a fresh random nonce.
// The empty string is returned as is.
func (c *Cipher) EncryptField(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	sealed := c.gcm.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// DecryptField returns the plaintext of a stored value.
//
// Values that are not in an encrypted format are returned unchanged. Values
// that look encrypted but cannot be opened (wrong key, tampering, corrupt hex)
// are reported through SignalDecryptFallback and also returned unchanged, so
// that a listing degrades instead of failing.
func (c *Cipher) DecryptField(ctx context.Context, value string) string {
	return c.decryptField(ctx, "", value)
}

func (c *Cipher) decryptField(ctx context.Context, field, value string) string {
	plain, format, err := c.open(value)
	if err != nil {
		emitDecryptFallback(ctx, field, format, err)
		return value
	}
	return plain
}

// open decrypts value, reporting which format it was recognized as.
func (c *Cipher) open(value string) (string, Format, error) {
	if !strings.Contains(value, ":") {
		return value, FormatPlain, nil
	}

	parts := strings.Split(value, ":")

	switch {
	case len(parts) == 2 && len(parts[0]) == NonceSize*2:
		plain, err := c.openCurrent(parts[0], parts[1])
		if err != nil {
			return "", FormatCurrent, newDecryptError(FormatCurrent, err)
		}
		return plain, FormatCurrent, nil

	case len(parts) == 3:
		plain, err := c.openLegacy(parts[0], parts[1], parts[2])
		if err != nil {
			return "", FormatLegacy, newDecryptError(FormatLegacy, err)
		}
		return plain, FormatLegacy, nil

	default:
		return value, FormatPlain, nil
	}
}

func (c *Cipher) openCurrent(ivHex, payloadHex string) (string, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("iv: %w", err)
	}

	payload, err := hex.DecodeString(payloadHex)
	if err != nil {
		return "", fmt.Errorf("payload: %w", err)
	}

	plain, err := c.gcm.Open(nil, iv, payload, nil)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}

// openLegacy opens the older layout, where the tag was stored separately.
func (c *Cipher) openLegacy(ivHex, tagHex, cipherHex string) (string, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("iv: %w", err)
	}

	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return "", fmt.Errorf("tag: %w", err)
	}

	ct, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", fmt.Errorf("ciphertext: %w", err)
	}

	if len(iv) == 0 {
		return "", fmt.Errorf("iv is empty")
	}

	gcm, err := cipher.NewGCMWithNonceSize(c.block, len(iv))
	if err != nil {
		return "", err
	}

	combined := make([]byte, 0, len(ct)+len(tag))
	combined = append(combined, ct...)
	combined = append(combined, tag...)

	plain, err := gcm.Open(nil, iv, combined, nil)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}

// EncryptField resolves the key from src and encrypts plaintext.
func EncryptField(src config.Source, plaintext string) (string, error) {
	c, err := FromSource(src)
	if err != nil {
		return "", err
	}
	return c.EncryptField(plaintext)
}

// DecryptField resolves the key from src and decrypts value.
// Only configuration errors are returned.
func DecryptField(ctx context.Context, src config.Source, value string) (string, error) {
	c, err := FromSource(src)
	if err != nil {
		return "", err
	}
	return c.DecryptField(ctx, value), nil
}
