package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}

// GenerateToken wraps an opaque session token in a signed JWT so non-browser
// clients can carry it in an Authorization header. The session store stays
// authoritative: a wrapped token is useless once its session is deleted.
func GenerateToken(secret, sessionToken string, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the envelope and returns the embedded session token.
func ParseToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*sessionClaims); ok && token.Valid {
		return claims.SessionToken, nil
	}

	return "", jwt.ErrTokenInvalidClaims
}
