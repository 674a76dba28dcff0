package config

import (
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("GATEWAY_BASE_URL", "http://192.168.4.28:5003")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.GatewayBaseURL != "http://192.168.4.28:5003" {
		t.Errorf("GatewayBaseURL = %q, want %q", cfg.GatewayBaseURL, "http://192.168.4.28:5003")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.GatewayTimeout != 10*time.Second {
		t.Errorf("GatewayTimeout = %v, want %v", cfg.GatewayTimeout, 10*time.Second)
	}
	if cfg.GatewayAllowPrivate {
		t.Error("GatewayAllowPrivate = true, want false")
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitMutation != 30 {
		t.Errorf("RateLimitMutation = %d, want %d", cfg.RateLimitMutation, 30)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("GATEWAY_TIMEOUT", "30s")
	t.Setenv("GATEWAY_ALLOW_PRIVATE", "true")
	t.Setenv("RATE_LIMIT_GENERAL", "60")
	t.Setenv("RATE_LIMIT_MUTATION", "10")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.GatewayTimeout != 30*time.Second {
		t.Errorf("GatewayTimeout = %v, want %v", cfg.GatewayTimeout, 30*time.Second)
	}
	if !cfg.GatewayAllowPrivate {
		t.Error("GatewayAllowPrivate = false, want true")
	}
	if cfg.RateLimitGeneral != 60 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 60)
	}
	if cfg.RateLimitMutation != 10 {
		t.Errorf("RateLimitMutation = %d, want %d", cfg.RateLimitMutation, 10)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.CORSAllowedOrigin != "https://admin.example.com" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "https://admin.example.com")
	}
}

func TestLoad_InvalidOptionalValues_FallBackToDefaults(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("GATEWAY_TIMEOUT", "not-a-duration")
	t.Setenv("RATE_LIMIT_GENERAL", "many")
	t.Setenv("GATEWAY_ALLOW_PRIVATE", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.GatewayTimeout != 10*time.Second {
		t.Errorf("GatewayTimeout = %v, want %v", cfg.GatewayTimeout, 10*time.Second)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.GatewayAllowPrivate {
		t.Error("GatewayAllowPrivate = true, want false")
	}
}

func TestLoad_MissingGatewayBaseURL_ReturnsError(t *testing.T) {
	t.Setenv("GATEWAY_BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing GATEWAY_BASE_URL, got nil")
	}
}
