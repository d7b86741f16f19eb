package web

import (
	"net/http"
	"strconv"
	"strings"
)

// Query helpers for filter parameters. Storefront filter inputs degrade
// gracefully: a missing or malformed value falls back to its zero/default
// instead of failing the request.

// QueryString returns the trimmed value of a query parameter, or the empty string.
func QueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// QueryValues collects the values of a repeatable query parameter. Values may
// also be supplied comma-separated in a single occurrence. Empty entries are dropped.
func QueryValues(r *http.Request, key string) []string {
	var values []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// QueryFloat parses a float query parameter, returning fallback when the
// parameter is absent or malformed.
func QueryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

// QueryInt parses an integer query parameter, returning fallback when the
// parameter is absent, malformed or not positive.
func QueryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
