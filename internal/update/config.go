package update

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig collects the knobs the program reads at startup. Resolution
// order is defaults, then the optional YAML file, then STUDYD_* environment
// overrides.
type RuntimeConfig struct {
	DatabasePath          string `yaml:"database_path"`
	PollIntervalSeconds   int    `yaml:"poll_interval_seconds"`
	EventBuffer           int    `yaml:"event_buffer"`
	DesktopNotifications  bool   `yaml:"desktop_notifications"`
	DefaultSessionMinutes int    `yaml:"default_session_minutes"`
	ExtendMinutes         int    `yaml:"extend_minutes"`
	QuickExtendMinutes    int    `yaml:"quick_extend_minutes"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DatabasePath:          "studyd.db",
		PollIntervalSeconds:   30,
		EventBuffer:           64,
		DesktopNotifications:  false,
		DefaultSessionMinutes: 25,
		ExtendMinutes:         15,
		QuickExtendMinutes:    5,
	}
}

// LoadRuntimeConfigFile overlays the YAML file at path onto base. A missing
// file is not an error; a malformed one is.
func LoadRuntimeConfigFile(base RuntimeConfig, path string) (RuntimeConfig, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return base, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", trimmed, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("STUDYD_DB_PATH")); v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := getEnvInt("STUDYD_POLL_INTERVAL_SECONDS"); ok && v > 0 {
		cfg.PollIntervalSeconds = v
	}
	if v, ok := getEnvInt("STUDYD_EVENT_BUFFER"); ok && v > 0 {
		cfg.EventBuffer = v
	}
	if v, ok := getEnvBool("STUDYD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("STUDYD_DEFAULT_SESSION_MINUTES"); ok && v > 0 {
		cfg.DefaultSessionMinutes = v
	}
	if v, ok := getEnvInt("STUDYD_EXTEND_MINUTES"); ok && v > 0 {
		cfg.ExtendMinutes = v
	}
	if v, ok := getEnvInt("STUDYD_QUICK_EXTEND_MINUTES"); ok && v > 0 {
		cfg.QuickExtendMinutes = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
