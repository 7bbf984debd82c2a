// Package testing provides test utilities for the freelance directory.
package testing

import (
	"encoding/hex"
	"testing"

	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/fieldcrypt"
)

// TestToken is the bearer token the fake server expects.
const TestToken = "test-token"

// TestKey returns a valid 32-byte AES key for testing.
func TestKey() []byte {
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestKeyHex returns TestKey in its 64-character hex form.
func TestKeyHex() string {
	return hex.EncodeToString(TestKey())
}

// TestCipher returns a Cipher for TestKey.
func TestCipher(tb testing.TB) *fieldcrypt.Cipher {
	tb.Helper()
	c, err := fieldcrypt.New(TestKey())
	if err != nil {
		tb.Fatalf("fieldcrypt.New() error: %v", err)
	}
	return c
}

// Source returns a configuration pointing at url with the test token and key.
func Source(url string) config.Map {
	return config.Map{
		config.KeyDatabaseURL:   url,
		config.KeyAuthToken:     TestToken,
		config.KeyEncryptionKey: TestKeyHex(),
	}
}
