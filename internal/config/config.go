// Package config resolves taskhub's settings. Precedence, highest wins:
// defaults, the global config file, an explicit --config file, settings
// saved from the TUI, TASKHUB_* environment variables, command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/notice"
	"github.com/sadopc/taskhub/internal/state"
)

// Keys, shared by the config file, the settings table, env and flags.
const (
	KeyBaseURL          = "base_url"
	KeyRequestTimeout   = "request_timeout"
	KeyNoticeTTL        = "notice_ttl"
	KeyDanglingPolicy   = "dangling_policy"
	KeyDBPath           = "db_path"
	KeyLogFile          = "log_file"
	KeyReminderWindow   = "reminder_window"
	KeyReminderInterval = "reminder_interval"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
	ErrUnknownKey         = errors.New("unknown config key")
)

type Config struct {
	BaseURL          string
	RequestTimeout   time.Duration
	NoticeTTL        time.Duration
	DanglingPolicy   state.DanglingPolicy
	DBPath           string
	LogFile          string
	ReminderWindow   time.Duration
	ReminderInterval time.Duration

	// Sources lists the files that were read, lowest precedence first.
	Sources []string
}

// Default returns the built-in configuration for env.
func Default(env map[string]string) Config {
	dir := configDir(env)
	return Config{
		BaseURL:          api.DefaultBaseURL,
		NoticeTTL:        notice.DefaultTTL,
		DanglingPolicy:   state.KeepDangling,
		DBPath:           filepath.Join(dir, "taskhub.db"),
		LogFile:          filepath.Join(stateDir(env, dir), "taskhub.log"),
		ReminderWindow:   time.Hour,
		ReminderInterval: time.Minute,
	}
}

// configDir is $XDG_CONFIG_HOME/taskhub or ~/.config/taskhub.
func configDir(env map[string]string) string {
	if x := env["XDG_CONFIG_HOME"]; x != "" {
		return filepath.Join(x, "taskhub")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "taskhub")
	}
	return filepath.Join(os.TempDir(), "taskhub")
}

func stateDir(env map[string]string, fallback string) string {
	if x := env["XDG_STATE_HOME"]; x != "" {
		return filepath.Join(x, "taskhub")
	}
	return fallback
}

// GlobalPath is where the user config file lives.
func GlobalPath(env map[string]string) string {
	return filepath.Join(configDir(env), "config.json")
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(*Config, string) error{
	KeyBaseURL: func(c *Config, v string) error {
		u, err := url.Parse(strings.TrimSpace(v))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url %q: want an absolute http(s) URL", v)
		}
		c.BaseURL = strings.TrimRight(u.String(), "/")
		return nil
	},
	KeyRequestTimeout: durationSetter(func(c *Config) *time.Duration { return &c.RequestTimeout }, 0),
	KeyNoticeTTL:      durationSetter(func(c *Config) *time.Duration { return &c.NoticeTTL }, time.Millisecond),
	KeyDanglingPolicy: func(c *Config, v string) error {
		p, err := state.ParseDanglingPolicy(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.DanglingPolicy = p
		return nil
	},
	KeyDBPath:           pathSetter(func(c *Config) *string { return &c.DBPath }),
	KeyLogFile:          pathSetter(func(c *Config) *string { return &c.LogFile }),
	KeyReminderWindow:   durationSetter(func(c *Config) *time.Duration { return &c.ReminderWindow }, 0),
	KeyReminderInterval: durationSetter(func(c *Config) *time.Duration { return &c.ReminderInterval }, time.Second),
}

func durationSetter(field func(*Config) *time.Duration, min time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := parseDuration(v)
		if err != nil {
			return err
		}
		if d < min {
			return fmt.Errorf("duration %s below minimum %s", d, min)
		}
		*field(c) = d
		return nil
	}
}

func pathSetter(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			return errors.New("path cannot be empty")
		}
		*field(c) = v
		return nil
	}
}

// parseDuration accepts Go duration strings and bare numbers of seconds.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid duration %q", v)
}

// Set parses value into key.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Get formats key's current value the way Set accepts it.
func (c Config) Get(key string) (string, error) {
	switch key {
	case KeyBaseURL:
		return c.BaseURL, nil
	case KeyRequestTimeout:
		return c.RequestTimeout.String(), nil
	case KeyNoticeTTL:
		return c.NoticeTTL.String(), nil
	case KeyDanglingPolicy:
		return c.DanglingPolicy.String(), nil
	case KeyDBPath:
		return c.DBPath, nil
	case KeyLogFile:
		return c.LogFile, nil
	case KeyReminderWindow:
		return c.ReminderWindow.String(), nil
	case KeyReminderInterval:
		return c.ReminderInterval.String(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Values returns every key with its formatted value.
func (c Config) Values() map[string]string {
	out := make(map[string]string, len(setters))
	for _, k := range Keys() {
		out[k], _ = c.Get(k)
	}
	return out
}

// marshal renders the persistable keys as a JSON object.
func (c Config) marshal() ([]byte, error) {
	return json.MarshalIndent(c.Values(), "", "  ")
}
