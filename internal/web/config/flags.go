package config

import (
	"flag"
	"io"
	"time"

	"github.com/haclabs/haccare/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        listen address
//	-r string        records directory
//	-u string        credential file
//	-s string        session secret key
//	-t int           session lifetime, minutes
//	-storage string  json or sqlite
//	-d string        SQLite database path
//	-dev             console logging
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-r", "-u", "-s", "-t", "-storage", "-d", "-dev"})

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Addr, "a", config.Addr, "listen address")
	fs.StringVar(&config.RecordsDir, "r", config.RecordsDir, "records directory")
	fs.StringVar(&config.UsersFile, "u", config.UsersFile, "credential file")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session secret key")
	ttl := fs.Int("t", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")
	fs.StringVar(&config.Storage, "storage", config.Storage, "record storage: json or sqlite")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "SQLite database path")
	fs.BoolVar(&config.Dev, "dev", config.Dev, "console logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	// -t only replaces the ttl when given, so sub-minute JSON values survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
