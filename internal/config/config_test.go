package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort {
		t.Errorf("addr = %s, want defaults", cfg.Addr())
	}
	if cfg.Templates.Dir != DefaultTemplatesDir {
		t.Errorf("templates dir = %q", cfg.Templates.Dir)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q for defaults, want empty", cfg.Path())
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "name": "dash",
  "port": 8080,
  "templates": {"dir": "tpl", "s3": {"bucket": "b", "prefix": "v1/"}},
  "dev": {"watch": ["tpl"], "hotReload": true}
}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "dash" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Addr = %q, want localhost:8080 (host stays default)", cfg.Addr())
	}
	if cfg.Templates.Dir != "tpl" || cfg.Templates.S3.Bucket != "b" {
		t.Errorf("templates = %+v", cfg.Templates)
	}
	if len(cfg.Dev.Watch) != 1 || !cfg.Dev.HotReload {
		t.Errorf("dev = %+v", cfg.Dev)
	}
	if cfg.Path() == "" {
		t.Error("Path empty for loaded config")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{nope"), 0o600)

	if _, err := Load(dir); err == nil {
		t.Error("bad JSON loaded without error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}

	cfg.Port = 99999
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range port accepted")
	}

	cfg = Default()
	cfg.Templates = TemplatesConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("config with no template source accepted")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"name": "up"}`), 0o600)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "up" {
		t.Errorf("Name = %q, want config found in ancestor", cfg.Name)
	}
}
