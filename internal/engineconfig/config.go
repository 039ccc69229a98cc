// Package engineconfig loads render-wide configuration from YAML: a
// plain struct with yaml tags, an upward directory search for a config
// file, and defaults filled in after unmarshal.
package engineconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the engine's render-wide tunables: locale-sensitive
// casing, truncate defaults, the urlencode reserved set, and the
// call-depth guard.
type Config struct {
	// ASCIIOnlyCasing restricts upper/lower/title to the ASCII
	// alphabet instead of Unicode's full case-folding tables.
	ASCIIOnlyCasing bool `yaml:"ascii_only_casing"`

	// DefaultTruncateLength/Leeway/End seed the truncate filter's
	// defaults when a template omits those arguments.
	DefaultTruncateLength int    `yaml:"default_truncate_length"`
	DefaultTruncateLeeway int    `yaml:"default_truncate_leeway"`
	DefaultTruncateEnd    string `yaml:"default_truncate_end"`

	// ExtraURLReservedChars appends characters to the fixed reserved
	// set the urlencode filter percent-encodes, for embedders whose
	// templates target a stricter URL component than the baseline set
	// covers.
	ExtraURLReservedChars string `yaml:"extra_url_reserved_chars"`

	// MaxCallDepth bounds recursion through user callables. Zero
	// disables the guard.
	MaxCallDepth int `yaml:"max_call_depth"`

	// Verbose enables additional diagnostic output from the renderer.
	Verbose bool `yaml:"verbose"`
}

// Default returns the engine's built-in configuration, used when no
// config file is found.
func Default() Config {
	return Config{
		DefaultTruncateLength: 255,
		DefaultTruncateLeeway: 5,
		DefaultTruncateEnd:    "...",
		MaxCallDepth:          200,
	}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engineconfig: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML config content, filling any omitted field from
// Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("engineconfig: parsing config: %w", err)
	}
	return cfg, nil
}

// Find searches for a config file named tmplcore.yaml or tmplcore.yml
// starting at dir and walking up through parent directories.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("engineconfig: resolving directory: %w", err)
	}
	for {
		for _, name := range []string{"tmplcore.yaml", "tmplcore.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
