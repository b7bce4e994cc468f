package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
modules = ["core"]

[server]
	name = "irc.example.net"
	sid = "0AA"
	description = "test"
	listen = ["127.0.0.1:6667"]

[limits]
	max_list = 20
	[limits.rate]
		credits_per_second = 2.5
		burst = 4

[log]
	level = "debug"

[[opers]]
	name = "admin"
	password = "$2a$10$abcdefghijklmnopqrstuv"
	hosts = ["*@127.0.0.1"]

[[links]]
	name = "hub.example.net"
	host = "10.0.0.2"
	send_password = "out"
	recv_password = "in"
`

const yamlConfig = `
server:
  name: irc.example.net
  sid: 0AA
  listen:
    - 127.0.0.1:6667
limits:
  max_list: 20
opers:
  - name: admin
    password: $2a$10$abcdefghijklmnopqrstuv
modules:
  - core
`

func TestFormatOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TOML, FormatOf("a.toml"))
	assert.Equal(t, TOML, FormatOf("a"))
	assert.Equal(t, YAML, FormatOf("a.yaml"))
	assert.Equal(t, YAML, FormatOf("A.YML"))
}

func TestFromReader_TOML(t *testing.T) {
	c, err := FromReader(strings.NewReader(tomlConfig), TOML)
	require.NoError(t, err)

	assert.Equal(t, "irc.example.net", c.Server.Name)
	assert.Equal(t, "0AA", c.Server.SID)
	assert.Equal(t, []string{"127.0.0.1:6667"}, c.Server.Listen)
	assert.Equal(t, 20, c.Limits.MaxList)
	assert.Equal(t, defaultMaxArgs, c.Limits.MaxArgs)
	assert.Equal(t, 2.5, c.Limits.Rate.CreditsPerSecond)
	assert.Equal(t, 4, c.Limits.Rate.Burst)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, []string{"core"}, c.Modules)
	require.Len(t, c.Opers, 1)
	assert.Equal(t, []string{"*@127.0.0.1"}, c.Opers[0].Hosts)
	require.NotNil(t, c.Link("hub.example.net"))
	assert.Equal(t, "in", c.Link("hub.example.net").RecvPassword)
}

func TestFromReader_YAML(t *testing.T) {
	c, err := FromReader(strings.NewReader(yamlConfig), YAML)
	require.NoError(t, err)

	assert.Equal(t, "irc.example.net", c.Server.Name)
	assert.Equal(t, "0AA", c.Server.SID)
	assert.Equal(t, 20, c.Limits.MaxList)
	assert.Equal(t, defaultLogLevel, c.Log.Level)
	assert.NotNil(t, c.Oper("admin"))
}

func TestFromReader_Garbage(t *testing.T) {
	t.Parallel()

	_, err := FromReader(strings.NewReader("[server"), TOML)
	assert.Error(t, err)
	_, err = FromReader(strings.NewReader("server: [a"), YAML)
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "uqircd.yml")
	require.NoError(t, os.WriteFile(file, []byte(yamlConfig), 0600))

	c, err := FromFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, c.Filename())

	_, err = FromFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARN")

	c, err := FromReader(strings.NewReader(tomlConfig), TOML)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestToWriter(t *testing.T) {
	t.Parallel()

	c, err := FromReader(strings.NewReader(tomlConfig), TOML)
	require.NoError(t, err)

	for _, format := range []Format{TOML, YAML} {
		buf := &bytes.Buffer{}
		require.NoError(t, c.ToWriter(buf, format))

		again, err := FromReader(buf, format)
		require.NoError(t, err)
		assert.Equal(t, c.Server, again.Server)
		assert.Equal(t, c.Opers, again.Opers)
	}
}
