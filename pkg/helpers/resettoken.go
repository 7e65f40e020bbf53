package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenManager mints and validates the time-limited tokens embedded in
// password-reset links. The API tokens themselves are opaque; only the reset
// flow uses signed claims, so the link can expire without server-side state.
type ResetTokenManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewResetTokenManager(secret string, ttl time.Duration) *ResetTokenManager {
	return &ResetTokenManager{Secret: []byte(secret), TTL: ttl}
}

type resetClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Generate returns a signed token for the user and its expiry time.
func (m *ResetTokenManager) Generate(userID string) (string, time.Time, error) {
	exp := time.Now().Add(m.TTL)
	claims := &resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse validates the token and returns the user id it was minted for.
func (m *ResetTokenManager) Parse(tokenStr string) (string, error) {
	claims := &resetClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid {
		return "", errors.New("invalid token")
	}
	return claims.UserID, nil
}
