package directory

import (
	"strings"
	"time"

	"github.com/srwicak/freelance-directory/fieldcrypt"
)

// Freelancer is one directory entry with plaintext values.
type Freelancer struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name" store.encrypt:"aes" load.decrypt:"aes"`
	Whatsapp  string `json:"whatsapp" db:"whatsapp" store.encrypt:"aes" load.decrypt:"aes" send.mask:"phone"`
	Field     string `json:"field" db:"field"`
	Province  string `json:"province" db:"province"`
	City      string `json:"city" db:"city"`
	Details   string `json:"details" db:"details" store.encrypt:"aes" load.decrypt:"aes"`
	Portfolio string `json:"portfolio" db:"portfolio" store.encrypt:"aes" load.decrypt:"aes"`
	LinkedIn  string `json:"linkedin" db:"linkedin" store.encrypt:"aes" load.decrypt:"aes" send.redact:""`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// Clone implements Cloner[Freelancer].
func (f Freelancer) Clone() Freelancer { return f }

// Created returns CreatedAt as a time.
func (f Freelancer) Created() time.Time {
	return time.Unix(f.CreatedAt, 0)
}

// matches reports whether term occurs in any searchable field, ignoring case.
func (f Freelancer) matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, v := range []string{f.Name, f.Field, f.Details, f.City, f.Province} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Name      string `json:"name"`
	Whatsapp  string `json:"whatsapp"`
	Field     string `json:"field"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Details   string `json:"details"`
	Portfolio string `json:"portfolio"`
	LinkedIn  string `json:"linkedin"`
}

// validate trims every field and reports required ones left blank.
func (in *RegisterInput) validate() error {
	for _, p := range []*string{&in.Name, &in.Whatsapp, &in.Field, &in.Province, &in.City, &in.Details, &in.Portfolio, &in.LinkedIn} {
		*p = strings.TrimSpace(*p)
	}

	var missing []string
	for _, req := range []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"whatsapp", in.Whatsapp},
		{"field", in.Field},
		{"province", in.Province},
		{"city", in.City},
	} {
		if req.value == "" {
			missing = append(missing, req.name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// UpdateInput is the profile edit form. Nil fields are left unchanged.
type UpdateInput struct {
	Name      *string `json:"name,omitempty"`
	Whatsapp  *string `json:"whatsapp,omitempty"`
	Field     *string `json:"field,omitempty"`
	Province  *string `json:"province,omitempty"`
	City      *string `json:"city,omitempty"`
	Details   *string `json:"details,omitempty"`
	Portfolio *string `json:"portfolio,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
}

// changes returns the provided fields keyed by column, trimmed.
// Required columns may not be cleared.
func (in UpdateInput) changes() (fieldcrypt.Fields, error) {
	out := fieldcrypt.Fields{}
	var blank []string

	for _, c := range []struct {
		column   string
		value    *string
		required bool
	}{
		{"name", in.Name, true},
		{"whatsapp", in.Whatsapp, true},
		{"field", in.Field, true},
		{"province", in.Province, true},
		{"city", in.City, true},
		{"details", in.Details, false},
		{"portfolio", in.Portfolio, false},
		{"linkedin", in.LinkedIn, false},
	} {
		if c.value == nil {
			continue
		}
		v := strings.TrimSpace(*c.value)
		if c.required && v == "" {
			blank = append(blank, c.column)
			continue
		}
		out[c.column] = v
	}

	if len(blank) > 0 {
		return nil, &ValidationError{Fields: blank}
	}
	if len(out) == 0 {
		return nil, ErrNoChanges
	}
	return out, nil
}
