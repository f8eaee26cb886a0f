// Package config loads the per-user tig configuration from
// $XDG_CONFIG_HOME/tig/config.toml and the TIG_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

// Storage backend names.
const (
	BackendFS   = "fs"
	BackendJSON = "json"
)

// DefaultJSONPath is the document used by the json backend when none is
// configured. It is relative to the working directory.
const DefaultJSONPath = "tig.json"

type User struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type Config struct {
	// Backend is "fs" or "json".
	Backend  string `toml:"backend"`
	JSONPath string `toml:"json_path"`
	LogLevel string `toml:"log_level"`
	User     User   `toml:"user"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Backend:  BackendFS,
		JSONPath: DefaultJSONPath,
		LogLevel: logrus.InfoLevel.String(),
	}
}

// Path returns where the config file is looked up.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "tig", "config.toml")
}

// Load reads the config file at path, or at Path() when path is empty, and
// applies environment overrides. A missing file is not an error; loaded
// reports whether one was read.
func Load(path string) (cfg Config, loaded bool, err error) {
	cfg = Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, false, errors.WrapIff(err, "read config %s", path)
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, false, errors.WrapIff(err, "parse config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			logrus.WithField("keys", undecoded).Warn("ignoring unknown config keys")
		}
		loaded = true
	}

	loadFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, loaded, err
	}
	return cfg, loaded, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TIG_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TIG_JSON_PATH"); v != "" {
		cfg.JSONPath = v
	}
	if v := os.Getenv("TIG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks the backend name and log level.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendFS, BackendJSON:
	default:
		return errors.Errorf("config: unknown backend %q (want %q or %q)", c.Backend, BackendFS, BackendJSON)
	}
	if c.Backend == BackendJSON && strings.TrimSpace(c.JSONPath) == "" {
		return errors.New("config: json_path is required for the json backend")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c Config) Level() (logrus.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, errors.WrapIf(err, "config: log_level")
	}
	return lvl, nil
}

// Save writes cfg as TOML to path, or to Path() when path is empty, creating
// parent directories.
func Save(path string, cfg Config) error {
	if path == "" {
		p, err := xdg.ConfigFile(filepath.Join("tig", "config.toml"))
		if err != nil {
			return errors.WrapIf(err, "locate config")
		}
		path = p
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIf(err, "create config dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIf(err, "write config")
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return errors.WrapIf(err, "encode config")
	}
	return errors.WrapIf(f.Close(), "write config")
}
