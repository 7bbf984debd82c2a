package config

import (
	"net/url"
	"strings"
)

// DefaultLocalURL is used outside production when no database URL is set.
// It is the default listen address of a local sqld instance.
const DefaultLocalURL = "http://127.0.0.1:8080"

// Endpoint is the resolved remote database location.
type Endpoint struct {
	URL       string // Base URL with an http or https scheme and no trailing slash
	AuthToken string // Bearer credential, may be empty for local servers
}

// ResolveEndpoint resolves the database endpoint from src.
//
// libsql:// URLs are rewritten to https://. A missing URL is an error in
// production and falls back to DefaultLocalURL otherwise.
func ResolveEndpoint(src Source) (Endpoint, error) {
	prod := IsProduction(src)

	raw, ok := lookupAny(src, KeyDatabaseURL, KeyLegacyDatabaseURL)
	if !ok {
		if prod {
			return Endpoint{}, Missing(KeyDatabaseURL)
		}
		raw = DefaultLocalURL
	}
	raw = strings.TrimSpace(raw)

	base, err := normalizeURL(raw)
	if err != nil {
		return Endpoint{}, err
	}

	token, _ := lookupAny(src, KeyAuthToken, KeyLegacyAuthToken)
	token = strings.TrimSpace(token)
	if token == "" && prod {
		return Endpoint{}, Missing(KeyAuthToken)
	}

	return Endpoint{URL: base, AuthToken: token}, nil
}

func normalizeURL(raw string) (string, error) {
	if rest, ok := strings.CutPrefix(raw, "libsql://"); ok {
		raw = "https://" + rest
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", Malformed(KeyDatabaseURL, "cannot be parsed as a URL")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Malformed(KeyDatabaseURL, "scheme must be libsql, https or http")
	}

	if u.Host == "" {
		return "", Malformed(KeyDatabaseURL, "host is empty")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
