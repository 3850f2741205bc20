package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// ServerConfig is the health-check server configuration. Key names and units
// follow gunicorn's settings, so `timeout` and `keepalive` are seconds.
type ServerConfig struct {
	Bind            string `toml:"bind" yaml:"bind" json:"bind"`
	Timeout         int    `toml:"timeout" yaml:"timeout" json:"timeout"`
	Keepalive       int    `toml:"keepalive" yaml:"keepalive" json:"keepalive"`
	GracefulTimeout int    `toml:"graceful_timeout" yaml:"graceful_timeout" json:"graceful_timeout"`
	LogLevel        string `toml:"loglevel" yaml:"loglevel" json:"loglevel"`
	BotPattern      string `toml:"bot_pattern" yaml:"bot_pattern" json:"bot_pattern"`
}

// Default returns the configuration used when no file is present.
func Default() ServerConfig {
	return ServerConfig{
		Bind:            "0.0.0.0:5000",
		Timeout:         30,
		Keepalive:       2,
		GracefulTimeout: 30,
		LogLevel:        "info",
		BotPattern:      "moviegrab-runner",
	}
}

// Load reads a config file, dispatching on its extension (.toml, .yaml/.yml,
// .json). Keys absent from the file keep their defaults. The parsed config is
// validated before being returned.
func Load(path string) (ServerConfig, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	case ".json":
		err = json.Unmarshal(raw, &cfg)
	default:
		return cfg, errors.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c ServerConfig) Validate() error {
	if c.Bind == "" {
		return errors.New("bind must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Bind); err != nil {
		return errors.Wrapf(err, "invalid bind address %q", c.Bind)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Keepalive <= 0 {
		return errors.New("keepalive must be positive")
	}
	if c.GracefulTimeout <= 0 {
		return errors.New("graceful_timeout must be positive")
	}
	if c.BotPattern != "" {
		if _, err := regexp.Compile(c.BotPattern); err != nil {
			return errors.Wrap(err, "invalid bot_pattern")
		}
	}
	return nil
}

// ReadTimeout and WriteTimeout both derive from the single `timeout` key,
// the way gunicorn applies its worker timeout to the whole request.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// IdleTimeout derives from `keepalive`.
func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.Keepalive) * time.Second
}

// ShutdownTimeout derives from `graceful_timeout`.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.GracefulTimeout) * time.Second
}
