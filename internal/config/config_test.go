package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig_Valid(t *testing.T) {
	yaml := `
target_version: "3.10"
typing_module: typing_extensions
max_steps: 500
debug: true
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TypingModule != "typing_extensions" {
		t.Errorf("typing_module = %q, want typing_extensions", cfg.TypingModule)
	}
	if cfg.MaxSteps != 500 {
		t.Errorf("max_steps = %d, want 500", cfg.MaxSteps)
	}
	if !cfg.Debug {
		t.Error("expected debug to be true")
	}
	if cfg.Target().Minor() != 10 {
		t.Errorf("target minor = %d, want 10", cfg.Target().Minor())
	}
	if !cfg.InlineAnnotations() {
		t.Error("3.10 should honour inline annotations")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TypingModule != DefaultTypingModule {
		t.Errorf("typing_module = %q, want %q", cfg.TypingModule, DefaultTypingModule)
	}
	if cfg.TargetVersion != DefaultTargetVersion {
		t.Errorf("target_version = %q, want %q", cfg.TargetVersion, DefaultTargetVersion)
	}

	def := DefaultConfig()
	if def.TypingModule != DefaultTypingModule || !def.InlineAnnotations() {
		t.Errorf("unexpected default config %+v", def)
	}
}

func TestInlineAnnotationsGate(t *testing.T) {
	cfg, err := ParseConfig([]byte(`target_version: "2.7"`), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InlineAnnotations() {
		t.Error("2.7 must not honour inline annotations")
	}
	if cfg.BuiltinGenerics() {
		t.Error("2.7 must not subscript builtin containers")
	}

	cfg, err = ParseConfig([]byte(`target_version: "3.10"`), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.InlineAnnotations() || !cfg.BuiltinGenerics() {
		t.Error("3.10 must honour inline annotations and builtin generics")
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad version", `target_version: "three"`},
		{"negative steps", `max_steps: -1`},
		{"bad typing module", `typing_module: "1typing"`},
		{"empty native", `natives: [""]`},
		{"missing native", `natives: ["does-not-exist.json"]`},
		{"malformed yaml", "target_version: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.yaml), "test.yaml"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNativeFilesResolveAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "hintinfer.yaml")
	if err := os.WriteFile(path, []byte("natives: [extra.json]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files := cfg.NativeFiles()
	if len(files) != 1 || files[0] != filepath.Join(dir, "extra.json") {
		t.Errorf("native files = %v", files)
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != "" {
		// A config further up the real filesystem is possible but unusual.
		if _, err := os.Stat(found); err != nil {
			t.Errorf("found non-existent config %q", found)
		}
	}

	want := filepath.Join(root, "a", "hintinfer.yml")
	if err := os.WriteFile(want, []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	found, err = FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != want {
		t.Errorf("FindConfig = %q, want %q", found, want)
	}
}

func TestSourceExtensions(t *testing.T) {
	tests := []struct {
		path    string
		source  bool
		trimmed string
	}{
		{"pkg/util.py", true, "pkg/util"},
		{"stubs/os.pyi", true, "stubs/os"},
		{"README.md", false, "README.md"},
		{"py", false, "py"},
	}
	for _, tt := range tests {
		if got := HasSourceExt(tt.path); got != tt.source {
			t.Errorf("HasSourceExt(%q) = %v, want %v", tt.path, got, tt.source)
		}
		if got := TrimSourceExt(tt.path); got != tt.trimmed {
			t.Errorf("TrimSourceExt(%q) = %q, want %q", tt.path, got, tt.trimmed)
		}
	}
}

func TestSetTarget(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.InlineAnnotations() {
		t.Fatal("default target should have inline annotations")
	}
	if err := cfg.SetTarget("2.7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InlineAnnotations() || cfg.TargetVersion != "2.7" {
		t.Errorf("target not applied: %s", cfg.TargetVersion)
	}
	if err := cfg.SetTarget("three"); err == nil {
		t.Error("expected an error for an invalid version")
	}
}
