package directory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/hrana"
)

func TestOperationError(t *testing.T) {
	err := newOperationError(OpGet, ErrNotFound)

	if err.Error() != "get: freelancer not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}

	var oe *OperationError
	if !errors.As(err, &oe) || oe.Op != OpGet {
		t.Errorf("expected *OperationError with OpGet, got %v", err)
	}

	if newOperationError(OpGet, nil) != nil {
		t.Error("nil error should stay nil")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []string{"name", "city"}}

	if err.Error() != "invalid input: missing name, city" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected errors.Is(err, ErrInvalidInput)")
	}
}

func TestTagError(t *testing.T) {
	err := newTagError("Name", "send.mask", "ssn")

	if err.Error() != `invalid tag send.mask:"ssn" (field Name)` {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidTag) {
		t.Error("expected errors.Is(err, ErrInvalidTag)")
	}
}

func TestToResult(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"nil", nil, CodeOK, ""},
		{"validation", newOperationError(OpRegister, &ValidationError{Fields: []string{"name"}}), CodeInvalidInput, "Data belum lengkap."},
		{"not found", newOperationError(OpGet, ErrNotFound), CodeNotFound, "User tidak ditemukan."},
		{"no changes", newOperationError(OpUpdate, ErrNoChanges), CodeNoChanges, "Tidak ada perubahan."},
		{"configuration", newOperationError(OpRegister, config.Missing(config.KeyEncryptionKey)), CodeConfiguration, "Gagal mendaftar user."},
		{"transport", newOperationError(OpList, &hrana.TransportError{StatusCode: 500, Body: "boom"}), CodeTransport, "Gagal DB."},
		{"query", newOperationError(OpUpdate, &hrana.QueryError{Message: "no such table"}), CodeQuery, "Gagal update user."},
		{"other", newOperationError(OpGet, errors.New("boom")), CodeInternal, "Gagal mengambil data user."},
		{"no operation", fmt.Errorf("boom"), CodeInternal, "Terjadi kesalahan."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ToResult(tt.err)
			if res.Success != (tt.err == nil) {
				t.Errorf("Success = %v", res.Success)
			}
			if res.Code != tt.code {
				t.Errorf("Code = %q, want %q", res.Code, tt.code)
			}
			if res.Message != tt.message {
				t.Errorf("Message = %q, want %q", res.Message, tt.message)
			}
		})
	}
}
