package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MINDWELL_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.StoreDriver != StoreDriverSQLite {
		t.Fatalf("unexpected store driver %q", cfg.StoreDriver)
	}
	if cfg.Chat.Provider != "ollama" {
		t.Fatalf("unexpected chat provider %q", cfg.Chat.Provider)
	}
	if cfg.Chat.Timeout != 60*time.Second {
		t.Fatalf("unexpected chat timeout %v", cfg.Chat.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MINDWELL_CONFIG", "")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "FILE")
	t.Setenv("CHAT_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr from PORT, got %q", cfg.ListenAddr)
	}
	if cfg.StoreDriver != StoreDriverFile {
		t.Fatalf("expected file driver, got %q", cfg.StoreDriver)
	}
	if cfg.Chat.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Chat.Timeout)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MINDWELL_CONFIG", "")
	t.Setenv("STORE_DRIVER", "redis")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	content := []byte("chat_model: llama3:70b\ndata_dir: /tmp/mindwell\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("MINDWELL_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Chat.Model != "llama3:70b" {
		t.Fatalf("expected model from file, got %q", cfg.Chat.Model)
	}
	if cfg.DataDir != "/tmp/mindwell" {
		t.Fatalf("expected data dir from file, got %q", cfg.DataDir)
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
