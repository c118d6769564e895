package utils

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Roles carried in tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for tokens that fail to parse or verify.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	key []byte
	now func() time.Time
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{key: []byte(secret), now: time.Now}
}

// GenerateJWT generates a JWT token for a user
func (tm *TokenManager) GenerateJWT(email, role string) (string, error) {
	claims := &Claims{
		Email: email,
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: tm.now().Add(tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.key)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return tokenString, nil
}

// ParseToken decodes and verifies a token.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tm.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
