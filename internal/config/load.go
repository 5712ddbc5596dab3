package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// EnvPrefix prefixes the environment form of every key.
const EnvPrefix = "TASKHUB_"

// SettingsLookup reads a TUI-saved override; ok is false when unset.
type SettingsLookup func(key string) (value string, ok bool, err error)

type Input struct {
	ConfigPath string            // --config; must exist when set
	Env        map[string]string // usually EnvMap(os.Environ())
	Settings   SettingsLookup    // optional
	Flags      *pflag.FlagSet    // optional; only changed flags apply
}

// Load resolves the configuration from every layer.
func Load(in Input) (Config, error) {
	cfg := Default(in.Env)

	global := GlobalPath(in.Env)
	if err := cfg.mergeFile(global, false); err != nil {
		return Config{}, err
	}
	if in.ConfigPath != "" {
		if err := cfg.mergeFile(in.ConfigPath, true); err != nil {
			return Config{}, err
		}
	}

	if in.Settings != nil {
		if err := cfg.MergeSettings(in.Settings); err != nil {
			return Config{}, err
		}
	}

	for _, key := range Keys() {
		v, ok := in.Env[EnvKey(key)]
		if !ok || v == "" {
			continue
		}
		if err := cfg.Set(key, v); err != nil {
			return Config{}, fmt.Errorf("%w: env %s: %w", ErrConfigInvalid, EnvKey(key), err)
		}
	}

	if in.Flags != nil {
		for _, key := range Keys() {
			f := in.Flags.Lookup(FlagName(key))
			if f == nil || !f.Changed {
				continue
			}
			if err := cfg.Set(key, f.Value.String()); err != nil {
				return Config{}, fmt.Errorf("%w: --%s: %w", ErrConfigInvalid, f.Name, err)
			}
		}
	}
	return cfg, nil
}

// MergeSettings applies overrides saved in the local store.
func (c *Config) MergeSettings(lookup SettingsLookup) error {
	for _, key := range Keys() {
		v, ok, err := lookup(key)
		if err != nil {
			return fmt.Errorf("read setting %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%w: setting %w", ErrConfigInvalid, err)
		}
	}
	return nil
}

// EnvKey maps notice_ttl to TASKHUB_NOTICE_TTL.
func EnvKey(key string) string { return EnvPrefix + strings.ToUpper(key) }

// FlagName maps notice_ttl to notice-ttl.
func FlagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// RegisterFlags adds one string flag per key. Values are parsed by Load,
// so an unchanged flag never overrides a lower layer.
func RegisterFlags(fs *pflag.FlagSet) {
	usage := map[string]string{
		KeyBaseURL:          "TaskHub service URL",
		KeyRequestTimeout:   "per-request timeout, 0 for none",
		KeyNoticeTTL:        "how long status messages stay up",
		KeyDanglingPolicy:   "tasks of a deleted category: keep, cascade or uncategorize",
		KeyDBPath:           "local database path",
		KeyLogFile:          "log file path",
		KeyReminderWindow:   "remind about tasks due within this window",
		KeyReminderInterval: "how often to check for due tasks",
	}
	for _, key := range Keys() {
		fs.String(FlagName(key), "", usage[key])
	}
}

// EnvMap turns os.Environ-style pairs into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func (c *Config) mergeFile(path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	values, err := parseFile(data)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, values[k]); err != nil {
			return fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
		}
	}
	c.Sources = append(c.Sources, path)
	return nil
}

// parseFile reads a JSON object that may carry comments and trailing
// commas. Numbers are kept in their literal form.
func parseFile(data []byte) (map[string]string, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
				out[k] = n.String()
				continue
			}
		}
		return nil, fmt.Errorf("%s: want a string or number", k)
	}
	return out, nil
}

// Save writes c's keys to path atomically. When path already holds a
// config, its comments and layout are kept and only values change.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	out, err := render(path, c)
	if err != nil {
		return err
	}
	if err := writeAtomic(path, out); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func render(path string, c Config) ([]byte, error) {
	fresh, err := c.marshal()
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		return append(fresh, '\n'), nil
	}
	v, err := hujson.Parse(existing)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	type op struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value string `json:"value"`
	}
	var ops []op
	for _, k := range Keys() {
		val, _ := c.Get(k)
		ops = append(ops, op{Op: "add", Path: "/" + k, Value: val})
	}
	patch, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	if err := v.Patch(patch); err != nil {
		return nil, fmt.Errorf("patch config: %w", err)
	}
	v.Format()
	return v.Pack(), nil
}

func writeAtomic(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}
