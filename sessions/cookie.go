package sessions

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-signin-server/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const cookieKeyInfo = "go-signin-server session cookie v1"

// CookieCodec signs session ids for the session cookie. The cookie carries
// an HS256 token whose jti is the session id, so an id that was not issued
// by this server is rejected before the store is consulted.
type CookieCodec struct {
	key []byte
}

// NewCookieCodec derives the signing key from secret with HKDF-SHA256.
func NewCookieCodec(secret string) (*CookieCodec, error) {
	if secret == "" {
		return nil, errors.New("[sessions NewCookieCodec] cookie secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("[sessions NewCookieCodec] derive key: %w", err)
	}
	return &CookieCodec{key: key}, nil
}

func (c *CookieCodec) Encode(id string, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("[sessions Encode] %w", err)
	}
	return signed, nil
}

// Decode verifies the cookie value and returns the session id inside it.
func (c *CookieCodec) Decode(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidCookie, err)
	}
	if claims.ID == "" {
		return "", apperrors.ErrInvalidCookie
	}
	return claims.ID, nil
}
