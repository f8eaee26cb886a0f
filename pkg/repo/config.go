package repo

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"emperror.dev/errors"
	"gopkg.in/ini.v1"

	"github.com/odvcencio/tig/pkg/storage"
)

const (
	defaultUserName  = "unknown"
	defaultUserEmail = "unknown@localhost"
)

func (r *Repo) configPath() string {
	return r.gitPath("config")
}

func defaultConfig() *ini.File {
	cfg := ini.Empty()
	core := cfg.Section("core")
	core.Key("repositoryformatversion").SetValue("0")
	core.Key("bare").SetValue("false")
	core.Key("compression").SetValue("zlib")
	return cfg
}

// ReadConfig reads .git/config. Missing config returns an empty config.
func (r *Repo) ReadConfig() (*ini.File, error) {
	data, err := r.Backend.Get(r.configPath())
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return ini.Empty(), nil
		}
		return nil, errors.WrapIf(err, "read config")
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, errors.WrapIf(err, "read config: parse")
	}
	return cfg, nil
}

// WriteConfig writes .git/config.
func (r *Repo) WriteConfig(cfg *ini.File) error {
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return errors.WrapIf(err, "write config: encode")
	}
	if err := r.Backend.Set(r.configPath(), buf.Bytes(), true); err != nil {
		return errors.WrapIf(err, "write config")
	}
	return nil
}

// ConfigValue returns the value of a "section.key" setting and whether it
// is set.
func (r *Repo) ConfigValue(key string) (string, bool, error) {
	section, name, err := splitConfigKey(key)
	if err != nil {
		return "", false, err
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", false, err
	}
	sec, err := cfg.GetSection(section)
	if err != nil || !sec.HasKey(name) {
		return "", false, nil
	}
	return sec.Key(name).String(), true, nil
}

// SetConfig stores a "section.key" setting.
func (r *Repo) SetConfig(key, value string) error {
	section, name, err := splitConfigKey(key)
	if err != nil {
		return err
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.Section(section).Key(name).SetValue(value)
	return r.WriteConfig(cfg)
}

func splitConfigKey(key string) (section, name string, err error) {
	i := strings.LastIndexByte(key, '.')
	if i <= 0 || i == len(key)-1 {
		return "", "", errors.WithDetails(ErrUnknownConfigKey, "key", key)
	}
	return key[:i], key[i+1:], nil
}

// Signature returns "Name <email> <unix> <tz>" for t using user.name and
// user.email from the repository config.
func (r *Repo) Signature(t time.Time) (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	user := cfg.Section("user")
	name := strings.TrimSpace(user.Key("name").String())
	if name == "" {
		name = defaultUserName
	}
	email := strings.TrimSpace(user.Key("email").String())
	if email == "" {
		email = defaultUserEmail
	}
	return fmt.Sprintf("%s <%s> %d %s", name, email, t.Unix(), formatTimezoneOffset(t)), nil
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}
