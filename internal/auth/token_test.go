package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var testClaims = SandboxClaims{SandboxID: "sbx_1", SandboxToken: "abc123"}

func TestIssueAndParse(t *testing.T) {
	token, exp, err := IssueSandboxToken("secret", testClaims, time.Hour)
	if err != nil {
		t.Fatalf("IssueSandboxToken: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Errorf("expiry %v too early", exp)
	}

	claims, err := ParseSandboxToken("secret", token)
	if err != nil || claims != testClaims {
		t.Errorf("ParseSandboxToken = %+v, %v", claims, err)
	}
}

func TestParseWithoutStorageToken(t *testing.T) {
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sandbox_id": "sbx_1",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	claims, err := ParseSandboxToken("secret", token)
	if err != nil || claims.SandboxID != "sbx_1" || claims.SandboxToken != "" {
		t.Errorf("ParseSandboxToken = %+v, %v", claims, err)
	}
}

func TestParseRejects(t *testing.T) {
	good, _, _ := IssueSandboxToken("secret", testClaims, time.Hour)
	expired, _, _ := IssueSandboxToken("secret", testClaims, -time.Minute)

	noClaim, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sandbox_id": "sbx_1",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", good},
		{"expired", "secret", expired},
		{"missing sandbox claim", "secret", noClaim},
		{"other algorithm", "secret", hs512},
		{"garbage", "secret", "not-a-jwt"},
		{"empty", "secret", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSandboxToken(tt.secret, tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	token, _, _ := IssueSandboxToken("secret", testClaims, time.Hour)

	if claims, err := Authorize("secret", token, "sbx_1"); err != nil || claims.SandboxToken != "abc123" {
		t.Errorf("own sandbox: %+v, %v", claims, err)
	}
	if _, err := Authorize("secret", token, "sbx_2"); !errors.Is(err, ErrWrongSandbox) {
		t.Errorf("other sandbox: err = %v, want ErrWrongSandbox", err)
	}
	if _, err := Authorize("secret", "junk", "sbx_1"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("junk token: err = %v", err)
	}
}
