package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSecret = errors.New("jwt secret not configured")

type Manager struct {
	secret               []byte
	accessTokenExpireMin int
}

type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
}

func NewManager(secret string, accessExpMin int) *Manager {
	if accessExpMin <= 0 {
		accessExpMin = 60
	}
	return &Manager{
		secret:               []byte(secret),
		accessTokenExpireMin: accessExpMin,
	}
}

func (m *Manager) GenerateAccessToken(userID, userType string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(m.accessTokenExpireMin) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
		UserID:   userID,
		UserType: userType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken accepts only HS256 tokens signed with the manager's secret
// that carry an expiry.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
