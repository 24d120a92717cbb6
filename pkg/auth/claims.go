package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIdentityClaims lists the payload fields consulted for the user id, in order.
var DefaultIdentityClaims = []string{"id", "_id", "sub"}

var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrNoIdentityClaim = errors.New("token carries no identity claim")
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims decodes the payload segment of a JWT without verifying the signature.
// The result is only fit for partitioning client-side state.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, ErrMalformedToken
	}
	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	claims := jwt.MapClaims{}
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// DecodeIdentity returns the first non-empty claim named in fields.
func DecodeIdentity(token string, fields []string) (string, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		fields = DefaultIdentityClaims
	}
	for _, name := range fields {
		if id := claimString(claims[name]); id != "" {
			return id, nil
		}
	}
	return "", ErrNoIdentityClaim
}

func claimString(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case json.Number:
		return c.String()
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		if c {
			return "true"
		}
	}
	return ""
}
