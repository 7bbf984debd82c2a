// Package config resolves settings from layered sources.
//
// Settings are never read from ambient globals by the data access layer.
// Callers build a Source once (usually Layered(Env(), platformBindings)) and
// hand it to constructors; every operation resolves what it needs from that
// Source at call time.
package config

import (
	"os"
	"strings"
)

// Setting names.
const (
	KeyDatabaseURL   = "DATABASE_URL"
	KeyAuthToken     = "AUTH_TOKEN"
	KeyEncryptionKey = "ENCRYPTION_KEY"
	KeyEnvironment   = "APP_ENV"

	// Names used by earlier deployments, consulted after the primary names.
	KeyLegacyDatabaseURL = "TURSO_DATABASE_URL"
	KeyLegacyAuthToken   = "TURSO_AUTH_TOKEN"
)

// Source looks up a single setting.
type Source interface {
	// Lookup returns the value for key and whether it was present.
	Lookup(key string) (string, bool)
}

// envSource reads the process environment.
type envSource struct {
	lookup func(string) (string, bool)
}

// Env returns a Source backed by the process environment.
func Env() Source {
	return envSource{lookup: os.LookupEnv}
}

func (s envSource) Lookup(key string) (string, bool) {
	return s.lookup(key)
}

// Map is a Source backed by a fixed set of values, such as the bindings a
// deployment platform exposes for the current request.
type Map map[string]string

// Lookup implements Source.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// layered consults sources from last to first.
type layered []Source

// Layered combines sources so that later sources take precedence over earlier
// ones. Empty values do not shadow earlier sources, and nil sources are skipped.
func Layered(sources ...Source) Source {
	out := make(layered, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (l layered) Lookup(key string) (string, bool) {
	return l.lookupAny(key)
}

// lookupAny tries every key within a layer before falling back to an earlier
// layer, so an alias set by the platform still beats a primary name from the
// environment.
func (l layered) lookupAny(keys ...string) (string, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if v, ok := lookupAny(l[i], keys...); ok {
			return v, true
		}
	}
	return "", false
}

// aliasLookuper is implemented by sources that resolve aliases themselves.
type aliasLookuper interface {
	lookupAny(keys ...string) (string, bool)
}

// lookupAny returns the first non-blank value among keys. The value is
// returned as stored.
func lookupAny(src Source, keys ...string) (string, bool) {
	if src == nil {
		return "", false
	}
	if a, ok := src.(aliasLookuper); ok {
		return a.lookupAny(keys...)
	}
	for _, k := range keys {
		if v, ok := src.Lookup(k); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// IsProduction reports whether src describes a production deployment.
func IsProduction(src Source) bool {
	v, _ := lookupAny(src, KeyEnvironment)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

// EncryptionKey returns the raw field encryption secret exactly as stored.
// Interpreting the secret is left to the caller.
func EncryptionKey(src Source) (string, error) {
	v, ok := lookupAny(src, KeyEncryptionKey)
	if !ok {
		return "", Missing(KeyEncryptionKey)
	}
	return v, nil
}
