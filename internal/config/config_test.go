package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "api_url: https://learn.example.com/api\ntimeout: 3s\nstorage:\n  backend: sql\n  sql_driver: sqlite\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("LEARNSNAP_CONFIG", path)
	t.Setenv("LEARNSNAP_TIMEOUT", "7s")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://learn.example.com/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("Timeout = %s, want env override 7s", cfg.Timeout)
	}
	if cfg.Storage.Backend != "sql" || cfg.Storage.SQLDriver != "sqlite" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LEARNSNAP_API_URL=http://api.test/api\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEARNSNAP_CONFIG", "")
	t.Setenv("HOME", dir)
	t.Setenv("LEARNSNAP_API_URL", "")
	os.Unsetenv("LEARNSNAP_API_URL")
	t.Cleanup(func() { os.Unsetenv("LEARNSNAP_API_URL") })

	cfg, warnings, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if cfg.APIURL != "http://api.test/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.APIURL = "ftp://nope"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-http url")
	}
	cfg = Default()
	cfg.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
