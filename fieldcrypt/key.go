package fieldcrypt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/srwicak/freelance-directory/config"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ParseKey interprets the configured secret.
//
// At most one quote character (" or ') is stripped from each end first,
// since some .env loaders keep them. Nothing else is trimmed. The remainder
// must be 64 hex characters, decoded to 32 bytes, or exactly 32 characters,
// used as raw bytes.
func ParseKey(raw string) ([]byte, error) {
	if len(raw) > 0 && isQuote(raw[0]) {
		raw = raw[1:]
	}
	if len(raw) > 0 && isQuote(raw[len(raw)-1]) {
		raw = raw[:len(raw)-1]
	}

	if len(raw) == KeySize*2 {
		if key, err := hex.DecodeString(raw); err == nil {
			return key, nil
		}
	}

	if len(raw) == KeySize {
		return []byte(raw), nil
	}

	return nil, config.Malformed(config.KeyEncryptionKey,
		fmt.Sprintf("must be 64 hex characters or 32 characters, got length %d", len(raw)))
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

var (
	ciphers   = make(map[[sha256.Size]byte]*Cipher)
	ciphersMu sync.RWMutex
)

// FromSource resolves ENCRYPTION_KEY from src and returns a Cipher for it.
//
// The secret is read on every call so that rotated keys take effect, but the
// Cipher built for a given secret is cached for the life of the process.
func FromSource(src config.Source) (*Cipher, error) {
	raw, err := config.EncryptionKey(src)
	if err != nil {
		return nil, err
	}

	id := sha256.Sum256([]byte(raw))

	// Fast path: read-lock cache check
	ciphersMu.RLock()
	if c, ok := ciphers[id]; ok {
		ciphersMu.RUnlock()
		return c, nil
	}
	ciphersMu.RUnlock()

	key, err := ParseKey(raw)
	if err != nil {
		return nil, err
	}

	c, err := New(key)
	if err != nil {
		return nil, err
	}

	ciphersMu.Lock()
	defer ciphersMu.Unlock()

	if cached, ok := ciphers[id]; ok {
		return cached, nil
	}
	ciphers[id] = c

	return c, nil
}

// Reset clears the cipher cache.
// This is primarily useful for test isolation.
func Reset() {
	ciphersMu.Lock()
	defer ciphersMu.Unlock()
	ciphers = make(map[[sha256.Size]byte]*Cipher)
}
