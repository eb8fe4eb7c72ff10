package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Storage != StorageMongo {
		t.Errorf("Storage = %q, want mongo", cfg.Storage)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Redis.IdentityTTL != 30*time.Second {
		t.Errorf("IdentityTTL = %s, want 30s", cfg.Redis.IdentityTTL)
	}
	if cfg.Audit.Workers != 4 {
		t.Errorf("Audit.Workers = %d, want 4", cfg.Audit.Workers)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development env by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"ENV":              "production",
		"STORAGE":          "memory",
		"TOKEN_TTL":        "15m",
		"SHUTDOWN_TIMEOUT": "3s",
		"REDIS_DB":         "2",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Storage != StorageMemory || cfg.Auth.TokenTTL != 15*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HTTP.ShutdownTimeout != 3*time.Second || cfg.Redis.DB != 2 {
		t.Fatalf("nested overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"missing secret": {map[string]string{}, "JWT_SECRET"},
		"bad storage":    {map[string]string{"JWT_SECRET": "x", "STORAGE": "postgres"}, "STORAGE"},
		"zero ttl":       {map[string]string{"JWT_SECRET": "x", "TOKEN_TTL": "0s"}, "TOKEN_TTL"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
