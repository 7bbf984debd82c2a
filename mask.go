package directory

import (
	"strings"
)

// MaskType represents a known data format with masking rules.
type MaskType string

const (
	MaskPhone MaskType = "phone" // 081234567890 -> 0812*****890
	MaskEmail MaskType = "email" // andi@example.com -> a***@example.com
	MaskName  MaskType = "name"  // Andi Wijaya -> A*** W*****
)

// Masker applies content-aware masking.
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) string
}

// phoneMasker masks Indonesian mobile numbers.
type phoneMasker struct{}

// PhoneMasker returns a masker for WhatsApp numbers.
// Keeps the country or trunk prefix with the operator code and the last
// three digits. Separators are dropped.
func PhoneMasker() Masker {
	return &phoneMasker{}
}

func (m *phoneMasker) Mask(value string) string {
	digits := extractDigits(value)
	if len(digits) < 8 {
		return strings.Repeat("*", len(value))
	}

	prefix := ""
	if strings.HasPrefix(strings.TrimSpace(value), "+") {
		prefix = "+"
	}

	head := 4
	if strings.HasPrefix(digits, "62") {
		head = 5
	}

	tail := digits[len(digits)-3:]
	return prefix + digits[:head] + strings.Repeat("*", len(digits)-head-3) + tail
}

// emailMasker masks email format: andi@example.com -> a***@example.com
type emailMasker struct{}

// EmailMasker returns a masker for email addresses.
// Preserves first character of local part and full domain.
func EmailMasker() Masker {
	return &emailMasker{}
}

func (m *emailMasker) Mask(value string) string {
	atIdx := strings.LastIndex(value, "@")
	if atIdx < 1 {
		// No @ or @ at start, mask everything
		return strings.Repeat("*", len(value))
	}

	local := []rune(value[:atIdx])
	domain := value[atIdx:]

	return string(local[0]) + "***" + domain
}

// nameMasker masks names: Andi Wijaya -> A*** W*****
type nameMasker struct{}

// NameMasker returns a masker for personal names.
// Preserves first letter of each word, masks the rest.
func NameMasker() Masker {
	return &nameMasker{}
}

func (m *nameMasker) Mask(value string) string {
	words := strings.Fields(value)
	masked := make([]string, len(words))

	for i, word := range words {
		runes := []rune(word)
		masked[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}

	return strings.Join(masked, " ")
}

// extractDigits returns only the ASCII digits of s.
func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// builtinMaskers returns the default masker registry.
func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskPhone: PhoneMasker(),
		MaskEmail: EmailMasker(),
		MaskName:  NameMasker(),
	}
}
