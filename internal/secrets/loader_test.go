package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Value: "  s3cret  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "s3cret" {
		t.Fatalf("expected trimmed secret, got %q", secret)
	}
}

func TestLoadFileTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	secret, err := Load(Source{Name: "token", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-file" {
		t.Fatalf("expected file value, got %q", secret)
	}
}

func TestLoadFromEnvFallback(t *testing.T) {
	t.Setenv("JOBSCOUT_TEST_SECRET", "from-env")

	secret, err := Load(Source{Name: "token", Env: "JOBSCOUT_TEST_SECRET"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-env" {
		t.Fatalf("expected env value, got %q", secret)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "token"}); err == nil {
		t.Fatal("expected error for empty source")
	}

	if _, err := Load(Source{Name: "token", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(Source{Name: "token", File: empty}); err == nil {
		t.Fatal("expected error for empty file")
	}
}
