package config

import "time"

// Config holds runtime settings for the NFCGate console.
//
// Fields:
//   - ServerURL: base URL of the backend admin HTTP API (no trailing /api).
//   - DatabasePath: SQLite file that keeps the session between runs; empty
//     keeps it in memory for this run only.
//   - DownloadDir: directory (relative to the working dir) for exported logs.
//   - TailLimit, StatsTop: default sizes for the tail and stats panels.
//   - Timezone: location used to read filter timestamps without an offset.
//   - RequestTimeout: per-request timeout; zero leaves it to the transport.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	DatabasePath   string
	DownloadDir    string
	TailLimit      int
	StatsTop       int
	Timezone       string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8081"
	c.DatabasePath = "console.db"
	c.DownloadDir = "downloads"
	c.TailLimit = 200
	c.StatsTop = 20
	c.Timezone = "Local"
	c.RequestTimeout = 0
	c.LogLevel = "info"
}

// Location resolves Timezone, falling back to time.Local when it is empty,
// "Local" or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
