package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nfcgate-console/internal/flagx"
	"github.com/dmitrijs2005/nfcgate-console/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from zero so a partial file only overrides what it names.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	DatabasePath   *string         `json:"database_path"`
	DownloadDir    *string         `json:"download_dir"`
	TailLimit      *int            `json:"tail_limit"`
	StatsTop       *int            `json:"stats_top"`
	Timezone       *string         `json:"timezone"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file whose path is
// given by -c or -config. Without either flag it does nothing. Read or
// unmarshal errors panic; callers recover if they want a softer failure.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.DownloadDir != nil {
		cfg.DownloadDir = *jc.DownloadDir
	}
	if jc.TailLimit != nil {
		cfg.TailLimit = *jc.TailLimit
	}
	if jc.StatsTop != nil {
		cfg.StatsTop = *jc.StatsTop
	}
	if jc.Timezone != nil {
		cfg.Timezone = *jc.Timezone
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
