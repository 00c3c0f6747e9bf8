package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	UserTokenTTL  = 7 * 24 * time.Hour
	GuestTokenTTL = 24 * time.Hour
)

type TokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	IsGuest bool   `json:"is_guest,omitempty"`
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// SignToken issues an HS256 token with the user id in "sub". Guest tokens
// get the shorter TTL.
func SignToken(userID, email string, isGuest bool) (string, error) {
	ttl := UserTokenTTL
	if isGuest {
		ttl = GuestTokenTTL
	}

	now := time.Now().UTC()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   email,
		IsGuest: isGuest,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(jwtSecret())
}

func ParseToken(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if tok == nil || !tok.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
