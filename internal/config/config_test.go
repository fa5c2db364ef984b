// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rfstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
port: /dev/ttyUSB0
baud: 57600
url: wss://bridge.local/ws
username: admin
no_ssl_verify: true
repeats: 8
format: json
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Port)
	assert.Equal(t, "/dev/ttyUSB0", *cfg.Port)
	assert.Equal(t, 57600, *cfg.Baud)
	assert.Equal(t, "wss://bridge.local/ws", *cfg.URL)
	assert.Equal(t, "admin", *cfg.Username)
	assert.True(t, *cfg.NoSSLVerify)
	assert.Equal(t, 8, *cfg.Repeats)
	assert.Equal(t, "json", *cfg.Format)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Values())
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "prot: /dev/ttyUSB0\n"},
		{"zero baud", "baud: 0\n"},
		{"baud as string", "baud: fast\n"},
		{"repeats too high", "repeats: 33\n"},
		{"repeats zero", "repeats: 0\n"},
		{"bad format", "format: xml\n"},
		{"http url", "url: http://bridge.local\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("port: [unterminated\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Values())

	path := writeConfig(t, "baud: 9600\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"baud": "9600"}, cfg.Values())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/rfstat.yaml")
	assert.Equal(t, "/tmp/explicit.yaml", ResolvePath("/tmp/explicit.yaml"))
	assert.Equal(t, "/etc/rfstat.yaml", ResolvePath(""))

	t.Setenv(EnvPath, "")
	assert.Equal(t, "", ResolvePath(""))
}

func TestApply_ExplicitFlagsWin(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	port := fs.String("port", "", "")
	baud := fs.Int("baud", 115200, "")
	format := fs.String("format", "text", "")
	noVerify := fs.Bool("no-ssl-verify", false, "")
	require.NoError(t, fs.Parse([]string{"--baud", "9600"}))

	cfg, err := Parse([]byte("port: /dev/ttyACM0\nbaud: 57600\nformat: json\nno_ssl_verify: true\nrepeats: 6\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Apply(fs))

	assert.Equal(t, "/dev/ttyACM0", *port)
	assert.Equal(t, 9600, *baud, "flag given on the command line must win")
	assert.Equal(t, "json", *format)
	assert.True(t, *noVerify)
	assert.Nil(t, fs.Lookup("repeats"))
}
