package env

import (
	"os"
	"strconv"
	"strings"
)

// Lookup returns the trimmed value of key; blank values count as unset.
func Lookup(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	return val, val != ""
}

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val, ok := Lookup(key); ok {
		return val
	}
	return fallback
}

// GetBool parses a boolean environment variable, returning fallback when unset or malformed.
func GetBool(key string, fallback bool) bool {
	raw, ok := Lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// VarName maps a camelCase slot name to an upper snake variable under prefix:
// VarName("MALLCART", "authToken") is MALLCART_AUTH_TOKEN.
func VarName(prefix, name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	v := strings.ToUpper(b.String())
	if prefix == "" {
		return v
	}
	return prefix + "_" + v
}
