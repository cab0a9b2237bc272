// Package config loads runtime configuration for the NFCGate console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8081",
//	  "database_path": "console.db",
//	  "download_dir": "downloads",
//	  "tail_limit": 200,
//	  "stats_top": 20,
//	  "timezone": "UTC",
//	  "request_timeout": "30s",
//	  "log_level": "info"
//	}
//
// An empty database_path keeps the session in memory for one run.
//
// request_timeout uses timex.Duration and is JSON-only; zero means requests
// run until the transport gives up.
package config
