package commands

import (
	"errors"
	"os"
	"time"

	"tabun-api/lib/configutil"
)

// Config is read from tabun.json5, tabun.local.json5 overrides it.
type Config struct {
	BaseURL string `json:"base_url"`

	Username string `json:"username"`
	Password string `json:"password"`
	// SessionID and SecurityKey reuse a browser session instead of
	// logging in.
	SessionID   string `json:"session_id"`
	SecurityKey string `json:"security_key"`
	Key         string `json:"key"`

	QueryIntervalMs  int  `json:"query_interval_ms"`
	CloudflareBypass bool `json:"cloudflare_bypass"`

	CacheDir        string `json:"cache_dir"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes"`
	// SnapshotDB is a sqlite file or a libsql:// url.
	SnapshotDB string `json:"snapshot_db"`
}

func (c Config) queryInterval() time.Duration {
	return time.Duration(c.QueryIntervalMs) * time.Millisecond
}

func (c Config) cacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return time.Minute * 10
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// readConfig returns the zero config when there is no config file, the
// site can be read anonymously.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}
