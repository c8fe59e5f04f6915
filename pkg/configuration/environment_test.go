package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadEnv_LoadsExistingFilesOnly(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "FM_TASKREQUEST_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("FM_TASKREQUEST_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("FM_TASKREQUEST_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("FM_TASKREQUEST_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestLoad_ParsesArxsOptions(t *testing.T) {
	t.Setenv("ARXS_API_KEY", "key")
	t.Setenv("ARXS_TENANT_ID", "tenant")
	t.Setenv("ARXS_IDENTITY_URL", "https://identity.example.test")
	t.Setenv("ARXS_BASE_URL", "https://api.example.test")
	t.Setenv("ARXS_REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(c.Unload)

	if c.Arxs.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", c.Arxs.RequestTimeout)
	}
	if c.Arxs.BlobVersion == "" {
		t.Fatalf("expected default blob version")
	}
	if err := c.Arxs.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Logger() == nil || c.Logger().GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug logger")
	}
}

func TestArxsOptions_Validate(t *testing.T) {
	base := ArxsOptions{
		APIKey:         "key",
		IdentityURL:    "https://identity.example.test",
		BaseURL:        "https://api.example.test",
		RequestTimeout: time.Second,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noKey := base
	noKey.APIKey = " "
	if err := noKey.Validate(); err == nil {
		t.Fatalf("expected missing key error")
	}

	badURL := base
	badURL.BaseURL = "api.example.test"
	if err := badURL.Validate(); err == nil {
		t.Fatalf("expected invalid base url error")
	}

	noTimeout := base
	noTimeout.RequestTimeout = 0
	if err := noTimeout.Validate(); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
