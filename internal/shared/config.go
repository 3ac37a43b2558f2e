package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/listsync/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	BackendReminders   = "reminders"
	BackendGoogleTasks = "googletasks"

	defaultListName = "Groceries"
	defaultInterval = 5
	minInterval     = 1
)

// Config represents the application configuration loaded from a TOML file and overlaid with the environment.
type Config struct {
	Log         LogConfig         `toml:"log"`
	Keep        KeepConfig        `toml:"keep"`
	Target      TargetConfig      `toml:"target"`
	Reminders   RemindersConfig   `toml:"reminders"`
	GoogleTasks GoogleTasksConfig `toml:"google_tasks"`
	Sync        SyncConfig        `toml:"sync"`
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Metrics     MetricsConfig     `toml:"metrics"`
	HTTP        HTTPConfig        `toml:"http"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// KeepConfig contains the note store gateway address and account credentials.
type KeepConfig struct {
	GatewayURL  string `toml:"gateway_url"`
	Email       string `toml:"email"`
	Password    string `toml:"password"`
	MasterToken string `toml:"master_token"`
}

// TargetConfig selects the reminders backend.
type TargetConfig struct {
	Backend string `toml:"backend"`
}

// RemindersConfig contains the reminders gateway address, Apple account credentials and the
// directory where session artifacts survive restarts.
type RemindersConfig struct {
	GatewayURL    string `toml:"gateway_url"`
	AppleID       string `toml:"apple_id"`
	Password      string `toml:"password"`
	SessionDir    string `toml:"session_dir"`
	TwoFactorCode string `toml:"two_factor_code"`
}

// GoogleTasksConfig points at the directory holding oauth_client.json and token.json.
type GoogleTasksConfig struct {
	SessionDir string `toml:"session_dir"`
}

// SyncConfig contains the list pairs and polling cadence.
type SyncConfig struct {
	Lists           string  `toml:"lists"`
	DefaultSource   string  `toml:"default_source"`
	DefaultTarget   string  `toml:"default_target"`
	IntervalMinutes int     `toml:"interval_minutes"`
	WritesPerSecond float64 `toml:"writes_per_second"`
}

// ServerConfig contains control server settings.
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	RefreshMinutes int    `toml:"refresh_minutes"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

type HTTPConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment keys onto the configuration. Empty values count as unset.
//
// lookup is usually [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := get(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("KEEP_GATEWAY_URL", &c.Keep.GatewayURL)
	str("GKEEP_EMAIL", &c.Keep.Email)
	str("GKEEP_PASSWORD", &c.Keep.Password)
	str("GKEEP_MASTER_TOKEN", &c.Keep.MasterToken)
	str("TARGET_BACKEND", &c.Target.Backend)
	str("REMINDERS_GATEWAY_URL", &c.Reminders.GatewayURL)
	str("APPLE_ID", &c.Reminders.AppleID)
	str("APPLE_PASSWORD", &c.Reminders.Password)
	str("ICLOUD_COOKIE_DIR", &c.Reminders.SessionDir)
	str("APPLE_2FA_CODE", &c.Reminders.TwoFactorCode)
	str("SYNC_LIST_NAMES", &c.Sync.Lists)
	str("GKEEP_LIST_TITLE", &c.Sync.DefaultSource)
	str("REMINDERS_LIST_NAME", &c.Sync.DefaultTarget)
	num("SCHEDULE_INTERVAL_MINUTES", &c.Sync.IntervalMinutes)
	num("SERVER_PORT", &c.Server.Port)
	str("DATABASE_PATH", &c.Database.Path)
	str("METRICS_ADDR", &c.Metrics.Addr)
}

// Pairs returns the configured (source, target) list pairs.
//
// When no explicit lists are configured, a single default pair is returned.
func (c *Config) Pairs() []models.SyncPair {
	if pairs := ParseSyncPairs(c.Sync.Lists); len(pairs) > 0 {
		return pairs
	}

	source := strings.TrimSpace(c.Sync.DefaultSource)
	if source == "" {
		source = defaultListName
	}
	target := strings.TrimSpace(c.Sync.DefaultTarget)
	if target == "" {
		target = defaultListName
	}
	return []models.SyncPair{{Source: source, Target: target}}
}

// ClearableLists returns the source list names a clear request empties: only explicitly configured lists.
func (c *Config) ClearableLists() []string {
	var names []string
	for _, p := range ParseSyncPairs(c.Sync.Lists) {
		names = append(names, p.Source)
	}
	return names
}

// Interval returns the polling interval in whole minutes.
//
// Values below one minute fall back to the 5 minute default.
func (c *Config) Interval() time.Duration {
	minutes := c.Sync.IntervalMinutes
	if minutes < minInterval {
		minutes = defaultInterval
	}
	return time.Duration(minutes) * time.Minute
}

// RefreshInterval returns the control server cache refresh interval (default 3 minutes).
func (c *Config) RefreshInterval() time.Duration {
	if c.Server.RefreshMinutes <= 0 {
		return 3 * time.Minute
	}
	return time.Duration(c.Server.RefreshMinutes) * time.Minute
}

// HTTPTimeout returns the per-request timeout for gateway clients.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTP.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ServerAddr returns host:port for the control server.
func (c *Config) ServerAddr() string {
	port := c.Server.Port
	if port == 0 {
		port = 5000
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, port)
}

// ValidateSource reports missing note store credentials.
func (c *Config) ValidateSource() error {
	if c.Keep.Email == "" {
		return fmt.Errorf("%w: GKEEP_EMAIL", ErrMissingCredentials)
	}
	if c.Keep.Password == "" && c.Keep.MasterToken == "" {
		return fmt.Errorf("%w: GKEEP_PASSWORD or GKEEP_MASTER_TOKEN", ErrMissingCredentials)
	}
	return nil
}

// ValidateTarget reports missing reminders credentials or an unknown backend.
func (c *Config) ValidateTarget() error {
	switch c.Target.Backend {
	case "", BackendReminders:
		if c.Reminders.AppleID == "" || c.Reminders.Password == "" {
			return fmt.Errorf("%w: APPLE_ID or APPLE_PASSWORD", ErrMissingCredentials)
		}
		return nil
	case BackendGoogleTasks:
		if c.GoogleTasks.SessionDir == "" {
			return fmt.Errorf("%w: google_tasks.session_dir", ErrMissingConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown target backend %q", ErrInvalidConfig, c.Target.Backend)
	}
}

// ParseSyncPairs parses a comma separated list of list names.
//
// Each entry is either "source=target" or a single name used on both sides; blank entries are skipped.
func ParseSyncPairs(raw string) []models.SyncPair {
	var pairs []models.SyncPair
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		source, target, found := strings.Cut(entry, "=")
		source = strings.TrimSpace(source)
		target = strings.TrimSpace(target)
		if !found || target == "" {
			target = source
		}
		if source == "" {
			source = target
		}
		if source == "" {
			continue
		}
		pairs = append(pairs, models.SyncPair{Source: source, Target: target})
	}
	return pairs
}
