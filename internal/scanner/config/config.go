// Package config handles configuration for the record scanner, including
// defaults, JSON overlay, and command-line flags.
package config

import "github.com/haclabs/haccare/internal/index"

// Config holds runtime settings for the record scanner.
//
// Fields:
//   - BaseDir: directory holding the index workbook and the Records/ and
//     Meds/ folders.
//   - IndexFile: workbook name, relative to BaseDir unless absolute.
//   - LegacyPaths: resolve index rows with an unknown type to BaseDir/<file>
//     instead of skipping them.
//   - Debug: enable debug logging.
type Config struct {
	BaseDir     string
	IndexFile   string
	LegacyPaths bool
	Debug       bool
}

// LoadDefaults populates c with defaults: the working directory and the
// standard index file name.
func (c *Config) LoadDefaults() {
	c.BaseDir = "."
	c.IndexFile = index.DefaultFile
	c.LegacyPaths = false
	c.Debug = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IndexOptions maps the config onto index.Options.
func (c *Config) IndexOptions() index.Options {
	return index.Options{
		BaseDir:     c.BaseDir,
		File:        c.IndexFile,
		LegacyPaths: c.LegacyPaths,
	}
}
