// Package config handles configuration for the web front-end, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/haclabs/haccare/internal/auth"
	"github.com/haclabs/haccare/internal/common"
)

// secretBytes is the random secret size used when none is configured.
const secretBytes = 32

// legacySecret is the key the old dashboard shipped with. Tokens signed with
// it can be forged by anyone, so it is refused.
const legacySecret = "secretKey"

// Storage backends for patient records.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config holds runtime settings for the web front-end.
//
// Fields:
//   - Addr: listen address.
//   - RecordsDir: directory of record_<id>.json files (json storage).
//   - UsersFile: credential file.
//   - SecretKey: HMAC secret for session tokens (HS256). When unset, a random
//     per-process secret is generated and sessions end on restart.
//   - SecretGenerated: SecretKey was generated by LoadConfig.
//   - SessionTTL: session cookie lifetime.
//   - Storage: "json" or "sqlite".
//   - DatabaseDSN: SQLite database path (sqlite storage).
//   - Dev: human-readable console logs instead of JSON lines.
type Config struct {
	Addr            string
	RecordsDir      string
	UsersFile       string
	SecretKey       string
	SecretGenerated bool
	SessionTTL      time.Duration
	Storage         string
	DatabaseDSN     string
	Dev             bool
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8501"
	c.RecordsDir = "Records"
	c.UsersFile = auth.DefaultFile
	c.SecretKey = ""
	c.SessionTTL = 8 * time.Hour
	c.Storage = StorageJSON
	c.DatabaseDSN = "haccare.db"
	c.Dev = false
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
	if cfg.SecretKey == "" {
		secret, err := common.MakeRandHexString(secretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SecretKey = secret
		cfg.SecretGenerated = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q, use %q or %q", c.Storage, StorageJSON, StorageSQLite)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("empty secret key")
	}
	if c.SecretKey == legacySecret {
		return fmt.Errorf("%w: secret key %q is public, set -s or run haccarectl secret", common.ErrInvalidInput, legacySecret)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}
