package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/haclabs/haccare/internal/flagx"
)

// JsonConfig is the on-disk shape of the scanner config file. Pointer
// fields distinguish "absent" from an explicit false.
type JsonConfig struct {
	BaseDir     string `json:"base_dir"`
	IndexFile   string `json:"index_file"`
	LegacyPaths *bool  `json:"legacy_paths"`
	Debug       *bool  `json:"debug"`
}

// parseJson overlays the file named by -c/-config (or $HACCARE_CONFIG)
// onto config. Absent keys keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.BaseDir != "" {
		config.BaseDir = c.BaseDir
	}
	if c.IndexFile != "" {
		config.IndexFile = c.IndexFile
	}
	if c.LegacyPaths != nil {
		config.LegacyPaths = *c.LegacyPaths
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
	return nil
}
