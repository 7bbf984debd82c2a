package benchmarks

import (
	"context"
	"testing"

	"github.com/srwicak/freelance-directory/fieldcrypt"
	"github.com/srwicak/freelance-directory/hrana"
	dirtest "github.com/srwicak/freelance-directory/testing"
)

var profileColumns = []string{"name", "whatsapp", "details", "portfolio", "linkedin"}

func profile() fieldcrypt.Fields {
	return fieldcrypt.Fields{
		"id":        "abc123xyz0",
		"name":      "Andi Wijaya",
		"whatsapp":  "081234567890",
		"field":     "web-development",
		"details":   "Membangun aplikasi web dengan Next.js dan Go.",
		"portfolio": "https://andi.dev",
		"linkedin":  "https://linkedin.com/in/andi",
	}
}

func BenchmarkEncryptField(b *testing.B) {
	c := dirtest.TestCipher(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.EncryptField("081234567890")
	}
}

func BenchmarkDecryptField(b *testing.B) {
	c := dirtest.TestCipher(b)
	enc, _ := c.EncryptField("081234567890")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.DecryptField(ctx, enc)
	}
}

func BenchmarkDecryptField_Plaintext(b *testing.B) {
	c := dirtest.TestCipher(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.DecryptField(ctx, "Jakarta")
	}
}

func BenchmarkEncryptFields(b *testing.B) {
	c := dirtest.TestCipher(b)
	rec := profile()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fieldcrypt.EncryptFields(ctx, c, rec, profileColumns)
	}
}

func BenchmarkDecryptFields(b *testing.B) {
	c := dirtest.TestCipher(b)
	ctx := context.Background()
	enc, _ := fieldcrypt.EncryptFields(ctx, c, profile(), profileColumns)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = fieldcrypt.DecryptFields(ctx, c, enc, profileColumns)
	}
}

func BenchmarkMapRows(b *testing.B) {
	cols := []string{"id", "name", "created_at"}
	rows := make([][]any, 100)
	for i := range rows {
		rows[i] = []any{
			map[string]any{"type": "text", "value": "abc"},
			map[string]any{"type": "text", "value": "Andi"},
			map[string]any{"type": "integer", "value": "1700000000"},
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hrana.MapRows(cols, rows)
	}
}
