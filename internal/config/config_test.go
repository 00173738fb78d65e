package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tscproj/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantHistory := filepath.Join(tempHome, ".local", "share", "tscproj", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if !cfg.Transform.PreserveAudioDuration {
		t.Fatal("expected audio preservation enabled by default")
	}
	if len(cfg.Transform.AudioTypes) != 1 || cfg.Transform.AudioTypes[0] != "AMFile" {
		t.Fatalf("unexpected audio types %v", cfg.Transform.AudioTypes)
	}
	if cfg.Output.BackupSuffix != ".backup" {
		t.Fatalf("unexpected backup suffix %q", cfg.Output.BackupSuffix)
	}
	if cfg.IndentString() != "  " {
		t.Fatalf("unexpected indent %q", cfg.IndentString())
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
[logging]
format = "JSON"
level = "Debug"
dir = "~/logs"

[transform]
audio_types = ["AMFile", " AMFile ", "ScreenVMFile"]

[output]
indent = 4

[batch]
workers = 8
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Logging.Dir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir %q", cfg.Logging.Dir)
	}
	if got := strings.Join(cfg.Transform.AudioTypes, ","); got != "AMFile,ScreenVMFile" {
		t.Fatalf("audio types not deduplicated: %q", got)
	}
	if cfg.Batch.Workers != 8 || cfg.Output.Indent != 4 {
		t.Fatalf("unexpected overrides: %+v %+v", cfg.Batch, cfg.Output)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[output]\nindnet = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestEnvOverridesLogLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TSCPROJ_LOG_LEVEL", "WARN")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env override, got %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"no audio types", func(c *config.Config) { c.Transform.AudioTypes = nil }, "transform.audio_types"},
		{"audio types optional without preservation", func(c *config.Config) {
			c.Transform.AudioTypes = nil
			c.Transform.PreserveAudioDuration = false
		}, ""},
		{"indent", func(c *config.Config) { c.Output.Indent = 9 }, "output.indent"},
		{"same suffix", func(c *config.Config) { c.Output.TemporalSuffix = c.Output.SpatialSuffix }, "must differ"},
		{"workers", func(c *config.Config) { c.Batch.Workers = 0 }, "batch.workers"},
		{"history path", func(c *config.Config) { c.History.Path = "" }, "history.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}
