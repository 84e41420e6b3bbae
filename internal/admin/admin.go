package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoOperator   = errors.New("operator key not configured")
)

// OperatorRole is the only role tokens are issued for.
const OperatorRole = "operator"

// Claims carried by operator tokens
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HashOperatorKey returns the bcrypt hash stored in OPERATOR_KEY_HASH.
func HashOperatorKey(plainKey string) (string, error) {
	if plainKey == "" {
		return "", fmt.Errorf("operator key is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hashed), nil
}

// VerifyOperatorKey checks if the provided key matches the stored hash
func VerifyOperatorKey(hashedKey, plainKey string) bool {
	if hashedKey == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(plainKey)) == nil
}

// IssueToken signs an HS256 operator token valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Role: OperatorRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken validates a token issued by IssueToken.
func ParseToken(secret, token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != OperatorRole {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
