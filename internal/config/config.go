// Package config loads the gridkit application config: table defaults,
// persistence settings, output format and theme colours.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/pkg/grid"
	"github.com/oakwood-commons/gridkit/pkg/settings"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// OutputFormats lists the values accepted by output.format and -o.
var OutputFormats = []string{"table", "csv", "json", "yaml", "markdown", "html"}

// Config is the merged application config.
type Config struct {
	Table       Table       `yaml:"table"`
	Persistence Persistence `yaml:"persistence"`
	Output      Output      `yaml:"output"`
	Theme       Theme       `yaml:"theme"`
}

// Table holds the defaults for grid.Options.
type Table struct {
	Pagination      bool  `yaml:"pagination"`
	PageSizes       []int `yaml:"page_sizes"`
	DefaultPageSize int   `yaml:"default_page_size"`
	GlobalSearch    bool  `yaml:"global_search"`
	Customizable    bool  `yaml:"customizable"`
}

type Persistence struct {
	StateDir        string        `yaml:"state_dir"`
	SaveNoticeDelay time.Duration `yaml:"save_notice_delay"`
}

type Output struct {
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
}

// Theme holds lipgloss colour strings (ANSI numbers or #rrggbb).
type Theme struct {
	Header    string `yaml:"header"`
	Border    string `yaml:"border"`
	RowNumber string `yaml:"row_number"`
	Active    string `yaml:"active"`
	Muted     string `yaml:"muted"`
	Info      string `yaml:"info"`
	Success   string `yaml:"success"`
	Warning   string `yaml:"warning"`
	Error     string `yaml:"error"`
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return bytes.Clone(defaultConfigYAML)
}

// Default decodes the embedded default config.
func Default() (Config, error) {
	var cfg Config
	if err := decodeInto(&cfg, defaultConfigYAML); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults with the file at path (if any) decoded on top.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Merge(&cfg, data); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Merge decodes data on top of cfg. Keys missing from data are left alone;
// a list in data replaces the list in cfg.
func Merge(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decodeInto(cfg, data)
}

func decodeInto(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate checks the table options and output format.
func (c Config) Validate() error {
	if err := c.TableOptions().Validate(); err != nil && !isMissingKey(err) {
		return fmt.Errorf("table: %w", err)
	}
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("output.format %q: want one of %v", c.Output.Format, OutputFormats)
	}
	if c.Output.Width < 0 {
		return fmt.Errorf("output.width must be non-negative")
	}
	if c.Persistence.SaveNoticeDelay < 0 {
		return fmt.Errorf("persistence.save_notice_delay must be non-negative")
	}
	return nil
}

// the storage key comes from the command line, not the config file
func isMissingKey(err error) bool {
	return errors.Is(err, grid.ErrMissingStorageKey)
}

// TableOptions converts the table section to grid.Options. StorageKey and
// Where are left for the caller.
func (c Config) TableOptions() grid.Options {
	return grid.Options{
		Pagination:      c.Table.Pagination,
		PageSizes:       slices.Clone(c.Table.PageSizes),
		DefaultPageSize: c.Table.DefaultPageSize,
		GlobalSearch:    c.Table.GlobalSearch,
		Customizable:    c.Table.Customizable,
	}
}

// StateDir returns the configured state directory or the XDG default.
func (c Config) StateDir() string {
	if c.Persistence.StateDir != "" {
		return c.Persistence.StateDir
	}
	return settings.DefaultStateDir()
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
