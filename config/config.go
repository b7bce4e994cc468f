/*
Package config loads the server configuration from toml or yaml.

An example configuration looks like this:

	[server]
		name = "irc.example.net"
		sid = "0AA"
		description = "An example server"
		listen = ["0.0.0.0:6667"]

	[limits]
		max_args = 15
		max_list = 50
		max_modes = 4
		[limits.rate]
			credits_per_second = 1.0
			burst = 10

	[log]
		level = "info"
		file = "/var/log/uqircd.log"

	[metrics]
		listen = "127.0.0.1:9100"

	[[opers]]
		name = "admin"
		# uqircd mkpasswd
		password = "$2a$10$..."
		hosts = ["*@127.0.0.1"]

	[[links]]
		name = "hub.example.net"
		host = "10.0.0.2"
		send_password = "out"
		recv_password = "in"

	modules = ["core"]

The same keys are used in yaml.
*/
package config

import (
	"strings"
)

const (
	// defaultMaxArgs bounds the arguments kept from one line.
	defaultMaxArgs = 15
	// defaultMaxList bounds each list mode of a channel.
	defaultMaxList = 50
	// defaultMaxModes bounds parameters in one outgoing MODE line.
	defaultMaxModes = 4
	// defaultCredits is how many rate limiter credits refill per second.
	defaultCredits = 1.0
	// defaultBurst is the rate limiter bucket size.
	defaultBurst = 10
	// defaultLogLevel when none is configured.
	defaultLogLevel = "info"
)

// The following format strings are for formatting various config errors.
const (
	fmtErrInvalid = "config(%v): Invalid %v, given: %v"
	fmtErrMissing = "config(%v): Requires %v, but nothing was given."
	fmtErrTag     = "config(%v): Failed %v check, given: %v"
	fmtErrDupe    = "config(%v): Duplicate %v, given: %v"
)

// Config is the server configuration.
type Config struct {
	Server  Server   `toml:"server" yaml:"server"`
	Limits  Limits   `toml:"limits" yaml:"limits"`
	Log     Log      `toml:"log" yaml:"log"`
	Metrics Metrics  `toml:"metrics" yaml:"metrics"`
	Opers   []Oper   `toml:"opers" yaml:"opers" validate:"dive"`
	Links   []Link   `toml:"links" yaml:"links" validate:"dive"`
	Modules []string `toml:"modules" yaml:"modules"`

	errors   errList
	filename string
}

// Server identifies this server.
type Server struct {
	Name        string   `toml:"name" yaml:"name" validate:"required,fqdn"`
	SID         string   `toml:"sid" yaml:"sid" validate:"required,len=3"`
	Description string   `toml:"description" yaml:"description"`
	Listen      []string `toml:"listen" yaml:"listen" validate:"required,min=1,dive,hostname_port"`
	// MOTD is the message of the day, one line per line of text.
	MOTD string `toml:"motd" yaml:"motd"`
}

// Limits are the tunables of dispatch and the mode engine.
type Limits struct {
	MaxArgs  int  `toml:"max_args" yaml:"max_args" validate:"gte=0,lte=64"`
	MaxList  int  `toml:"max_list" yaml:"max_list" validate:"gte=0"`
	MaxModes int  `toml:"max_modes" yaml:"max_modes" validate:"gte=0"`
	Rate     Rate `toml:"rate" yaml:"rate"`
}

// Rate configures the per user command credit scheme.
type Rate struct {
	CreditsPerSecond float64 `toml:"credits_per_second" yaml:"credits_per_second" validate:"gte=0"`
	Burst            int     `toml:"burst" yaml:"burst" validate:"gte=0"`
}

// Log configures the root logger.
type Log struct {
	Level string `toml:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error crit"`
	File  string `toml:"file" yaml:"file"`
}

// Metrics configures the prometheus endpoint, disabled when Listen is
// empty.
type Metrics struct {
	Listen string `toml:"listen" yaml:"listen" validate:"omitempty,hostname_port"`
}

// Oper is an operator block. Password is a bcrypt hash.
type Oper struct {
	Name     string   `toml:"name" yaml:"name" validate:"required"`
	Password string   `toml:"password" yaml:"password" validate:"required"`
	Hosts    []string `toml:"hosts" yaml:"hosts"`
}

// Link is a server allowed to link with us.
type Link struct {
	Name         string `toml:"name" yaml:"name" validate:"required,fqdn"`
	Host         string `toml:"host" yaml:"host"`
	SendPassword string `toml:"send_password" yaml:"send_password" validate:"required"`
	RecvPassword string `toml:"recv_password" yaml:"recv_password" validate:"required"`
}

// New creates a config with every default filled in.
func New() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// setDefaults fills in zero values.
func (c *Config) setDefaults() {
	if c.Limits.MaxArgs == 0 {
		c.Limits.MaxArgs = defaultMaxArgs
	}
	if c.Limits.MaxList == 0 {
		c.Limits.MaxList = defaultMaxList
	}
	if c.Limits.MaxModes == 0 {
		c.Limits.MaxModes = defaultMaxModes
	}
	if c.Limits.Rate.CreditsPerSecond == 0 {
		c.Limits.Rate.CreditsPerSecond = defaultCredits
	}
	if c.Limits.Rate.Burst == 0 {
		c.Limits.Rate.Burst = defaultBurst
	}
	if len(c.Log.Level) == 0 {
		c.Log.Level = defaultLogLevel
	}
}

// Oper finds the operator block by name.
func (c *Config) Oper(name string) *Oper {
	for i := range c.Opers {
		if c.Opers[i].Name == name {
			return &c.Opers[i]
		}
	}
	return nil
}

// Link finds the link block by server name.
func (c *Config) Link(name string) *Link {
	for i := range c.Links {
		if strings.EqualFold(c.Links[i].Name, name) {
			return &c.Links[i]
		}
	}
	return nil
}

// Filename is the file the config was loaded from, if any.
func (c *Config) Filename() string {
	return c.filename
}
