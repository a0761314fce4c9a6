package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_PATH", "SERVER_HOST", "SERVER_PORT", "SERVER_IDLE_TIMEOUT", "SERVER_MAX_FRAME",
		"SERVER_MAX_CONNECTIONS", "SERVER_AUTOSTART", "GRPC_ADDRESS", "CONTROL_ADDRESS", "LOG_LEVEL", "LOG_FORMAT"} {
		// t.Setenv restores the previous value after the test.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Run from an empty directory so no stray .env is picked up.
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "database.db" || cfg.Server.ListenAddress() != "127.0.0.1:8888" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Server.AutoStart || cfg.Server.IdleTimeout != 0 || cfg.GRPC.Address != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_HOST", "::1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_IDLE_TIMEOUT", "30s")
	t.Setenv("SERVER_AUTOSTART", "false")
	t.Setenv("GRPC_ADDRESS", "127.0.0.1:9001")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddress() != "[::1]:9000" {
		t.Fatalf("listen address: %s", cfg.Server.ListenAddress())
	}
	if cfg.Server.IdleTimeout != 30*time.Second || cfg.Server.AutoStart {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte("SERVER_PORT=7777\nLOG_FORMAT=console\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("LOG_FORMAT")
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7777 || cfg.Log.Format != "console" {
		t.Fatalf(".env not applied: %+v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"port out of range": {"SERVER_PORT", "70000"},
		"port not a number": {"SERVER_PORT", "http"},
		"host not an ip":    {"SERVER_HOST", "example.com"},
		"bad log level":     {"LOG_LEVEL", "chatty"},
		"bad duration":      {"SERVER_IDLE_TIMEOUT", "soon"},
		"negative duration": {"SERVER_IDLE_TIMEOUT", "-1s"},
		"bad grpc address":  {"GRPC_ADDRESS", "nope"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestString(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(cfg.String(), "127.0.0.1:8888") {
		t.Fatalf("String: %s", cfg.String())
	}
}
