package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/haclabs/haccare/internal/flagx"
	"github.com/haclabs/haccare/internal/timex"
)

// JsonConfig is the on-disk shape of the web config file. SessionTTL
// accepts "8h" style strings or integer nanoseconds.
type JsonConfig struct {
	Addr        string          `json:"addr"`
	RecordsDir  string          `json:"records_dir"`
	UsersFile   string          `json:"users_file"`
	SecretKey   string          `json:"secret_key"`
	SessionTTL  *timex.Duration `json:"session_ttl"`
	Storage     string          `json:"storage"`
	DatabaseDSN string          `json:"database_dsn"`
	Dev         *bool           `json:"dev"`
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

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.Addr, c.Addr)
	set(&config.RecordsDir, c.RecordsDir)
	set(&config.UsersFile, c.UsersFile)
	set(&config.SecretKey, c.SecretKey)
	set(&config.Storage, c.Storage)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.Dev != nil {
		config.Dev = *c.Dev
	}
	return nil
}
