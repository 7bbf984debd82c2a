package directory

import (
	"testing"
)

func TestPhoneMasker(t *testing.T) {
	m := PhoneMasker()

	tests := []struct {
		input    string
		expected string
	}{
		{"081234567890", "0812*****890"},
		{"0812-3456-7890", "0812*****890"},
		{"+6281234567890", "+62812*****890"},
		{"6281234567890", "62812*****890"},
		{"08123456", "0812*456"},
		{"12345", "*****"}, // Too short
	}

	for _, tt := range tests {
		result := m.Mask(tt.input)
		if result != tt.expected {
			t.Errorf("PhoneMasker(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestEmailMasker(t *testing.T) {
	m := EmailMasker()

	tests := []struct {
		input    string
		expected string
	}{
		{"andi@example.com", "a***@example.com"},
		{"b@test.id", "b***@test.id"},
		{"élan@example.com", "é***@example.com"},
		{"noatsign", "********"}, // No @
		{"@start.com", "**********"},
	}

	for _, tt := range tests {
		result := m.Mask(tt.input)
		if result != tt.expected {
			t.Errorf("EmailMasker(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestNameMasker(t *testing.T) {
	m := NameMasker()

	tests := []struct {
		input    string
		expected string
	}{
		{"Andi Wijaya", "A*** W*****"},
		{"Siti", "S***"},
		{"  Budi   Santoso ", "B*** S******"},
		{"", ""},
	}

	for _, tt := range tests {
		result := m.Mask(tt.input)
		if result != tt.expected {
			t.Errorf("NameMasker(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
