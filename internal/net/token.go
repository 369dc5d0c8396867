package net

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies rejoin tokens. A client that drops its
// connection mid-match presents the token to re-authenticate without a
// password round trip.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer from a hex-encoded secret. An empty
// secret generates a random one; tokens then die with the process.
func NewTokenIssuer(hexSecret string, ttl time.Duration) (*TokenIssuer, error) {
	var secret []byte
	if hexSecret != "" {
		b, err := hex.DecodeString(hexSecret)
		if err != nil {
			return nil, fmt.Errorf("decode token secret: %w", err)
		}
		secret = b
	} else {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

// Issue signs a token for an authenticated account.
func (t *TokenIssuer) Issue(accountID int64, name string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"aid":  accountID,
		"name": name,
		"exp":  now.Add(t.ttl).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses a token and returns the account it was issued for.
func (t *TokenIssuer) Verify(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("invalid token")
	}
	aid, ok := claims["aid"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	name, ok := claims["name"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	return int64(aid), name, nil
}
