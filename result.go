package directory

import (
	"errors"

	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/hrana"
)

// Result codes let callers branch without matching messages.
const (
	CodeOK            = "ok"
	CodeInvalidInput  = "invalid_input"
	CodeNotFound      = "not_found"
	CodeNoChanges     = "no_changes"
	CodeConfiguration = "configuration"
	CodeTransport     = "transport"
	CodeQuery         = "query"
	CodeInternal      = "internal"
)

// Result is the user-facing outcome of a Repository call.
// Message is safe to render; it never includes error details.
type Result struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"error,omitempty"`
}

// failureMessages are shown when an operation fails for reasons the visitor
// cannot fix.
var failureMessages = map[Operation]string{
	OpRegister: "Gagal mendaftar user.",
	OpList:     "Gagal DB.",
	OpGet:      "Gagal mengambil data user.",
	OpUpdate:   "Gagal update user.",
	OpExists:   "Gagal memeriksa user.",
	OpPing:     "Gagal DB.",
}

// ToResult converts an error returned by a Repository into a Result.
func ToResult(err error) Result {
	if err == nil {
		return Result{Success: true, Code: CodeOK}
	}

	var op Operation
	var oe *OperationError
	if errors.As(err, &oe) {
		op = oe.Op
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return Result{Code: CodeInvalidInput, Message: "Data belum lengkap."}
	case errors.Is(err, ErrNotFound):
		return Result{Code: CodeNotFound, Message: "User tidak ditemukan."}
	case errors.Is(err, ErrNoChanges):
		return Result{Code: CodeNoChanges, Message: "Tidak ada perubahan."}
	case errors.Is(err, config.ErrConfiguration):
		return Result{Code: CodeConfiguration, Message: failureMessage(op)}
	case errors.Is(err, hrana.ErrTransport):
		return Result{Code: CodeTransport, Message: failureMessage(op)}
	case errors.Is(err, hrana.ErrQuery):
		return Result{Code: CodeQuery, Message: failureMessage(op)}
	default:
		return Result{Code: CodeInternal, Message: failureMessage(op)}
	}
}

func failureMessage(op Operation) string {
	if msg, ok := failureMessages[op]; ok {
		return msg
	}
	return "Terjadi kesalahan."
}
