package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			APIKey:     "test-key",
			Model:      "text-embedding-3-small",
			Dimensions: 384,
		},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingEmbeddingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_OversampleTooLow(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Oversample = 5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for oversample below 10")
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Cache.TTLSec != 86400 {
		t.Errorf("cache ttl default: got %d, want 86400", cfg.Cache.TTLSec)
	}
	if cfg.Search.Oversample != 20 {
		t.Errorf("oversample default: got %d, want 20", cfg.Search.Oversample)
	}
	if cfg.Search.ScanCap != 1000 {
		t.Errorf("scan cap default: got %d, want 1000", cfg.Search.ScanCap)
	}
	if cfg.Auth.TokenTTLMin != 60 {
		t.Errorf("token ttl default: got %d, want 60", cfg.Auth.TokenTTLMin)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("CINEDEX_TEST_SECRET", "s3cret")
	defer os.Unsetenv("CINEDEX_TEST_SECRET")

	in := []byte("secret: ${CINEDEX_TEST_SECRET}\nmodel: ${CINEDEX_TEST_MISSING:-fallback}\n")
	out := string(expandEnvVars(in))

	want := "secret: s3cret\nmodel: fallback\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestGetEnv_Default(t *testing.T) {
	os.Unsetenv("ENV")
	if env := GetEnv(); env != "local" {
		t.Errorf("GetEnv: got %q, want %q", env, "local")
	}
}
