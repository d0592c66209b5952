// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Paths    Paths              `toml:"paths"`
	Output   Output             `toml:"output"`
	Exclude  Exclude            `toml:"exclude"`
	Watch    Watch              `toml:"watch"`
	History  History            `toml:"history"`
	IPBlocks map[string]IPBlock `toml:"ip_blocks"`
}

type Paths struct {
	// TServerRoot points at the legacy source checkout; TNGRoot is only
	// used for output location guidance in reports.
	TServerRoot string `toml:"tserver_root"`
	TNGRoot     string `toml:"tng_root"`
}

type Output struct {
	Dir      string `toml:"dir"`
	Workers  int    `toml:"workers"`
	Guide    bool   `toml:"guide"`
	Mappings string `toml:"mappings"` // optional mapping table override path
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// IPBlock describes one hardware IP's legacy suites and where its
// translated tests belong in the target tree.
type IPBlock struct {
	Suites    []string `toml:"suites"`
	TNGOutput string   `toml:"tng_output"`
	Feature   string   `toml:"feature"`
}

const DefaultPath = "./tsmigrate.toml"

func Default() *Config {
	return &Config{
		Output: Output{
			Dir:     "tng_output",
			Workers: 4,
			Guide:   true,
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
		History: History{
			Enabled: true,
			Path:    "tng_output/history.db",
		},
	}
}

// Load reads the TOML config and applies defaults. A missing file at the
// default location is not an error; any other read failure is.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	if cfg.Output.Workers <= 0 {
		cfg.Output.Workers = 4
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "tng_output"
	}
	return cfg, nil
}

// IPBlock returns the configured block for a name, case-insensitively.
func (c *Config) IPBlock(name string) (IPBlock, bool) {
	for key, block := range c.IPBlocks {
		if strings.EqualFold(key, name) {
			return block, true
		}
	}
	return IPBlock{}, false
}
