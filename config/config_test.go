package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestMergePrecedence(t *testing.T) {
	base := Defaults()
	fromFile := File{Directory: ptr("file-dir"), Port: ptr(1111)}
	fromCLI := File{Port: ptr(2222)}

	got := Merge(base, fromFile, fromCLI)
	if got.Directory != "file-dir" {
		t.Fatalf("Directory = %q, want file-dir", got.Directory)
	}
	if got.Port != 2222 {
		t.Fatalf("Port = %d, want 2222 (CLI overrides file)", got.Port)
	}
}

func TestMergeLeavesUnsetFieldsAlone(t *testing.T) {
	base := Defaults()
	got := Merge(base, File{}, File{})
	if got != base {
		t.Fatalf("got %#v, want unchanged defaults %#v", got, base)
	}
}

func TestMergeTimeoutMillisecondsConversion(t *testing.T) {
	got := Merge(Defaults(), File{}, File{TimeoutMS: ptr(int64(1500))})
	if got.Timeout != 1500*time.Millisecond {
		t.Fatalf("Timeout = %v, want 1.5s", got.Timeout)
	}
}

func TestParseFileEmptyPath(t *testing.T) {
	f, err := ParseFile("")
	if err != nil {
		t.Fatal(err)
	}
	if f != (File{}) {
		t.Fatalf("expected zero File, got %#v", f)
	}
}

func TestParseFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drd.yaml")
	content := "directory: /var/drd\nport: 9999\nverbose: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Directory == nil || *f.Directory != "/var/drd" {
		t.Fatalf("Directory = %v, want /var/drd", f.Directory)
	}
	if f.Port == nil || *f.Port != 9999 {
		t.Fatalf("Port = %v, want 9999", f.Port)
	}
	if f.Verbose == nil || *f.Verbose != true {
		t.Fatalf("Verbose = %v, want true", f.Verbose)
	}
}
