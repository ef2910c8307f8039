// Package config holds the settings of a pdis run. Values come from
// defaults, an optional JSON file, the environment and finally flags, in
// increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"

	"pdis/internal/disasm"
	"pdis/internal/image"
)

// Environment variables read by ApplyEnv.
const (
	EnvFormat   = "PDIS_FORMAT"
	EnvBase     = "PDIS_BASE"
	EnvSibCount = "PDIS_SIB_COUNT"
	EnvNoColor  = "PDIS_NO_COLOR"
)

// Config represents configuration for the pdis tool
type Config struct {
	Format      string `json:"format,omitempty" jsonschema:"title=Format,description=Input layout,enum=auto,enum=rom,enum=boot,enum=segment,enum=codefile,default=auto"`
	Base        string `json:"base,omitempty" jsonschema:"title=Base,description=Load address override for rom/boot/segment images (e.g. 0xf400)"`
	SibCount    int    `json:"sibCount,omitempty" jsonschema:"title=SIB Count,description=Number of entries in the SIB vector of boot images,minimum=1,default=2"`
	SegmentName string `json:"segmentName,omitempty" jsonschema:"title=Segment Name,description=Name of a single-segment image,default=seg"`
	NoColor     bool   `json:"noColor,omitempty" jsonschema:"title=No Color,description=Disable syntax colouring"`
	Debug       bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	Output      string `json:"output,omitempty" jsonschema:"title=Output,description=Write the listing to this file instead of stdout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:      image.FormatAuto.String(),
		SibCount:    disasm.DefaultSibCount,
		SegmentName: "seg",
	}
}

// Load returns the defaults overlaid with the JSON file at path. An empty
// path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overlays values set in the environment. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := getenv(EnvBase); v != "" {
		c.Base = v
	}
	if v := getenv(EnvSibCount); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSibCount, err)
		}
		c.SibCount = n
	}
	if v := getenv(EnvNoColor); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNoColor, err)
		}
		c.NoColor = b
	}
	return c.Validate()
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if _, err := image.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseBase(c.Base); err != nil {
		errs = append(errs, err)
	}
	if c.SibCount < 1 {
		errs = append(errs, fmt.Errorf("sibCount must be at least 1, got %d", c.SibCount))
	}
	return errors.Join(errs...)
}

// ParseBase parses a word address written in Go integer syntax, so 0xf400,
// 0o172000 and 62464 are all accepted. An empty string means no override.
func ParseBase(s string) (*uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid base %q: %w", s, err)
	}
	b := uint16(v)
	return &b, nil
}

// ImageOptions converts the settings into image reader options.
func (c Config) ImageOptions() (image.Options, error) {
	format, err := image.ParseFormat(c.Format)
	if err != nil {
		return image.Options{}, err
	}
	base, err := ParseBase(c.Base)
	if err != nil {
		return image.Options{}, err
	}
	return image.Options{
		Format:      format,
		Base:        base,
		SibCount:    c.SibCount,
		SegmentName: c.SegmentName,
	}, nil
}

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
