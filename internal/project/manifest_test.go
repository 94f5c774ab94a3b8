package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[package]
name = "demo"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Package.Name != "demo" {
		t.Errorf("name = %q, want demo", cfg.Package.Name)
	}
	if cfg.Optimize.Entry != "main" {
		t.Errorf("entry = %q, want default main", cfg.Optimize.Entry)
	}
	if cfg.Optimize.CollectGlobals != 1 {
		t.Errorf("collect_globals = %d, want default 1", cfg.Optimize.CollectGlobals)
	}
	if cfg.Optimize.Emit != "text" {
		t.Errorf("emit = %q, want default text", cfg.Optimize.Emit)
	}
}

func TestLoadConfigFull(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[package]
name = "demo"

[optimize]
entry = "start"
collect_globals = 3
assume_pure = ["sqrt", "abs"]
emit = "none"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Optimize.Entry != "start" || cfg.Optimize.CollectGlobals != 3 {
		t.Errorf("optimize = %+v", cfg.Optimize)
	}
	if len(cfg.Optimize.AssumePure) != 2 || cfg.Optimize.AssumePure[0] != "sqrt" {
		t.Errorf("assume_pure = %v", cfg.Optimize.AssumePure)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing_package", "[optimize]\nentry = \"main\"\n"},
		{"empty_name", "[package]\nname = \"  \"\n"},
		{"negative_collect", "[package]\nname = \"x\"\n[optimize]\ncollect_globals = -1\n"},
		{"bad_emit", "[package]\nname = \"x\"\n[optimize]\nemit = \"llvm\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.content)
			if _, err := LoadConfig(path); err == nil {
				t.Fatalf("want error for %s", tc.name)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %q, want manifest in %q", path, root)
	}
}
