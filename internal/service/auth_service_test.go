package service

import (
	"testing"

	"github.com/payalert-labs/payalert/internal/config"
)

func authConfig(cronSecret string) *config.Config {
	cfg := &config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.Username = "admin"
	cfg.Auth.Password = "hunter2"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Cron.Secret = cronSecret
	return cfg
}

func TestVerifyCronSecret(t *testing.T) {
	svc := NewAuthService(authConfig("sweep-secret"))
	if !svc.CronSecretConfigured() {
		t.Fatal("secret should be configured")
	}
	if !svc.VerifyCronSecret("sweep-secret") {
		t.Fatal("correct secret rejected")
	}
	if svc.VerifyCronSecret("wrong") {
		t.Fatal("wrong secret accepted")
	}
	if svc.VerifyCronSecret("") {
		t.Fatal("empty secret accepted")
	}
}

func TestVerifyCronSecretUnconfigured(t *testing.T) {
	svc := NewAuthService(authConfig(""))
	if svc.CronSecretConfigured() {
		t.Fatal("secret should not be configured")
	}
	// an unset secret must never match anything, including empty input
	if svc.VerifyCronSecret("") {
		t.Fatal("unconfigured secret accepted empty input")
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc := NewAuthService(authConfig("x"))
	token, err := svc.Authenticate("admin", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("username = %q", claims.Username)
	}
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	svc := NewAuthService(authConfig("x"))
	if _, err := svc.Authenticate("admin", "wrong"); err == nil {
		t.Fatal("expected authentication failure")
	}
}
