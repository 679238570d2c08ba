package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongSandbox = errors.New("token does not grant this sandbox")
)

// SandboxClaims identify the sandbox a control token grants. SandboxToken is
// the storage token used to rehydrate the sandbox after a restart.
type SandboxClaims struct {
	SandboxID    string
	SandboxToken string
}

// IssueSandboxToken signs a control token for one sandbox.
func IssueSandboxToken(secret string, claims SandboxClaims, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	registered := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	custom := jwt.MapClaims{
		"sandbox_id":    claims.SandboxID,
		"sandbox_token": claims.SandboxToken,
		"exp":           registered.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseSandboxToken validates token and returns its claims.
func ParseSandboxToken(secret, token string) (SandboxClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return SandboxClaims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return SandboxClaims{}, ErrInvalidToken
	}
	sandboxID, ok := claims["sandbox_id"].(string)
	if !ok || sandboxID == "" {
		return SandboxClaims{}, ErrInvalidToken
	}
	sandboxToken, _ := claims["sandbox_token"].(string)
	return SandboxClaims{SandboxID: sandboxID, SandboxToken: sandboxToken}, nil
}

// Authorize checks that token controls sandboxID.
func Authorize(secret, token, sandboxID string) (SandboxClaims, error) {
	claims, err := ParseSandboxToken(secret, token)
	if err != nil {
		return SandboxClaims{}, err
	}
	if claims.SandboxID != sandboxID {
		return SandboxClaims{}, ErrWrongSandbox
	}
	return claims, nil
}
