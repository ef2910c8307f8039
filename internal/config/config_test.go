package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pdis/internal/image"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdis.json")
	if err := os.WriteFile(path, []byte(`{"format":"rom","sibCount":4}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != "rom" || cfg.SibCount != 4 {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.SegmentName != "seg" {
		t.Errorf("SegmentName = %q, want the default", cfg.SegmentName)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"sibCount":0}`), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("Load() accepted sibCount 0")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "empty",
			vars: nil,
			want: Default(),
		},
		{
			name: "all set",
			vars: map[string]string{EnvFormat: "boot", EnvBase: "0x100", EnvSibCount: "3", EnvNoColor: "1"},
			want: Config{Format: "boot", Base: "0x100", SibCount: 3, SegmentName: "seg", NoColor: true},
		},
		{
			name:    "bad count",
			vars:    map[string]string{EnvSibCount: "two"},
			wantErr: true,
		},
		{
			name:    "bad format",
			vars:    map[string]string{EnvFormat: "tape"},
			wantErr: true,
		},
		{
			name:    "base out of range",
			vars:    map[string]string{EnvBase: "0x10000"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(env(tt.vars))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.want {
				t.Errorf("ApplyEnv() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestImageOptions(t *testing.T) {
	cfg := Default()
	cfg.Format = "segment"
	cfg.Base = "0o1000"
	cfg.SegmentName = "main"

	opts, err := cfg.ImageOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Format != image.FormatSegment || opts.SegmentName != "main" || opts.SibCount != 2 {
		t.Errorf("ImageOptions() = %+v", opts)
	}
	if opts.Base == nil || *opts.Base != 0x200 {
		t.Errorf("Base = %v, want 0x200", opts.Base)
	}

	cfg.Base = ""
	opts, _ = cfg.ImageOptions()
	if opts.Base != nil {
		t.Errorf("Base = %v, want no override", *opts.Base)
	}
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	defs, _ := doc["$defs"].(map[string]any)
	cfg, _ := defs["Config"].(map[string]any)
	props, _ := cfg["properties"].(map[string]any)
	for _, key := range []string{"format", "base", "sibCount", "segmentName", "noColor", "debug", "output"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema has no property %q", key)
		}
	}
}
