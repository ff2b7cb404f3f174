// Package token issues and verifies the signed confirmation tokens carried by
// post-submission redirects. The thank-you view renders from the token alone,
// without re-querying any session state.
package token

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims carries the respondent identity the confirmation view needs.
type Claims struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Lang string `json:"lang"`
	jwt.RegisteredClaims
}

// DefaultTTL keeps confirmation permalinks valid well past the 30-day
// submission lock window.
const DefaultTTL = 45 * 24 * time.Hour

// Sign issues an HS256 token for the confirmation redirect.
func Sign(secret []byte, name, respondentType, lang string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims := Claims{
		Name: name,
		Type: respondentType,
		Lang: lang,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies a confirmation token and returns its claims.
func Parse(secret []byte, tok string) (*Claims, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, errors.New("empty token")
	}
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) { return secret, nil })
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
