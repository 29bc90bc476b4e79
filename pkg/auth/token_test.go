package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mandibazaar/mandi-backend/pkg/config"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "mandibazaar",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	accountID := uuid.New()

	payload := AccessTokenPayload{
		UserID:    userID,
		AccountID: accountID,
		Role:      enums.AccountRoleVendor,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.AccountID != accountID {
		t.Fatalf("account id not preserved")
	}
	if claims.Role != enums.AccountRoleVendor {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "mandibazaar",
		ExpirationMinutes: 10,
	}
	now := time.Now()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Role:      enums.AccountRoleSupplier,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	tampered := cfg
	tampered.Secret = "other-secret"
	if _, err := ParseAccessToken(tampered, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestMintAccessTokenRejectsUnknownRole(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "mandibazaar",
		ExpirationMinutes: 10,
	}
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Role:      enums.AccountRole("admin"),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid account role") {
		t.Fatalf("expected role validation error, got %v", err)
	}
}
