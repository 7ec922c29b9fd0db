package config

import (
	"flag"
	"io"

	"github.com/haclabs/haccare/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-b string   base directory
//	-x string   index workbook file
//	-l          legacy path resolution for unknown record types
//	-v          debug logging
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-b", "-x", "-l", "-v"})

	fs := flag.NewFlagSet("scanner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.BaseDir, "b", config.BaseDir, "base directory")
	fs.StringVar(&config.IndexFile, "x", config.IndexFile, "index workbook file")
	fs.BoolVar(&config.LegacyPaths, "l", config.LegacyPaths, "resolve unknown record types to the base directory")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug logging")

	return fs.Parse(args)
}
