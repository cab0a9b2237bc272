package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/nfcgate-console/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-d string   SQLite session database path
//	-o string   download directory for exports
//	-l int      default tail limit
//	-n int      default stats top-N
//	-z string   timezone for filter timestamps
//	-v string   log level
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-o", "-l", "-n", "-z", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "session database path")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory for exports")
	fs.IntVar(&cfg.TailLimit, "l", cfg.TailLimit, "default tail limit")
	fs.IntVar(&cfg.StatsTop, "n", cfg.StatsTop, "default stats top-N")
	fs.StringVar(&cfg.Timezone, "z", cfg.Timezone, "timezone for filter timestamps")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
