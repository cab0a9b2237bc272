package config

import (
	"flag"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name:     "all flags",
			args:     []string{"cmd", "-a", "http://nfc:9000", "-d", "/tmp/s.db", "-o", "out", "-l", "50", "-n", "5", "-z", "UTC", "-v", "debug"},
			expected: &Config{ServerURL: "http://nfc:9000", DatabasePath: "/tmp/s.db", DownloadDir: "out", TailLimit: 50, StatsTop: 5, Timezone: "UTC", LogLevel: "debug"},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-x", "1", "-a", "http://other"},
			expected: &Config{ServerURL: "http://other"},
		},
		{name: "incorrect tail limit", args: []string{"cmd", "-l", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
