package fieldcrypt

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrEncrypt indicates encryption of a field failed.
	ErrEncrypt = errors.New("encrypt failed")

	// ErrDecrypt matches every DecryptError.
	ErrDecrypt = errors.New("decrypt failed")
)

// Format names the serialized shape of a stored field value.
type Format string

const (
	// FormatCurrent is ivHex:payloadHex with a 12-byte iv and the tag appended.
	FormatCurrent Format = "current"

	// FormatLegacy is ivHex:tagHex:cipherHex with a 16-byte iv.
	FormatLegacy Format = "legacy"

	// FormatPlain is anything else; the value is stored unencrypted.
	FormatPlain Format = "plain"
)

// DecryptError describes why a stored value could not be opened.
// It never leaves this package's public API: DecryptField and DecryptFields
// report it as an event and fall back to the stored value.
type DecryptError struct {
	Format Format // Shape the value was recognized as
	Cause  error  // Hex or authentication failure
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("%s (%s format): %v", ErrDecrypt, e.Format, e.Cause)
}

func (e *DecryptError) Unwrap() []error {
	return []error{ErrDecrypt, e.Cause}
}

// newDecryptError creates a DecryptError for a value of the given format.
func newDecryptError(format Format, cause error) error {
	return &DecryptError{Format: format, Cause: cause}
}
