package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	errMsgInvalidConfigFile = "config: Failed to load config file"

	// EnvConfig names the config file when no flag is given.
	EnvConfig = "UQIRCD_CONFIG"
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "UQIRCD_LOGLEVEL"
)

// Format is a config file syntax.
type Format int

// Config formats.
const (
	TOML Format = iota
	YAML
)

// FormatOf picks the format by file extension, toml unless it is .yaml or
// .yml.
func FormatOf(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return YAML
	}
	return TOML
}

// FromFile loads, defaults and validates a config file.
func FromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, errMsgInvalidConfigFile)
	}
	defer file.Close()

	c, err := FromReader(file, FormatOf(filename))
	if err != nil {
		return nil, err
	}
	c.filename = filename
	return c, nil
}

// FromReader loads, defaults and validates a config.
func FromReader(reader io.Reader, format Format) (*Config, error) {
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, errMsgInvalidConfigFile)
	}

	c := &Config{}
	switch format {
	case YAML:
		err = yaml.Unmarshal(buf, c)
	default:
		_, err = toml.NewDecoder(bytes.NewReader(buf)).Decode(c)
	}
	if err != nil {
		return nil, errors.Wrap(err, errMsgInvalidConfigFile)
	}

	c.ApplyEnv()
	c.setDefaults()

	if !c.Validate() {
		return c, c.errors
	}
	return c, nil
}

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv() {
	if lvl := os.Getenv(EnvLogLevel); len(lvl) > 0 {
		c.Log.Level = strings.ToLower(lvl)
	}
}

// ToWriter writes the config out in the given format.
func (c *Config) ToWriter(writer io.Writer, format Format) error {
	var err error
	switch format {
	case YAML:
		enc := yaml.NewEncoder(writer)
		enc.SetIndent(2)
		err = enc.Encode(c)
		if err == nil {
			err = enc.Close()
		}
	default:
		err = toml.NewEncoder(writer).Encode(c)
	}
	return errors.Wrap(err, "config: Failed to write config")
}
