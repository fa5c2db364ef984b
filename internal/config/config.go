// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the optional rfstat YAML file and applies it to
// command-line flags that were not set explicitly.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when --config is empty
const EnvPath = "RFSTAT_CONFIG"

//go:embed schema.cue
var schemaCUE string

// ErrInvalid wraps schema violations in a config file
var ErrInvalid = errors.New("invalid config")

// Config mirrors the persistent flags. Pointer fields distinguish an absent
// key from a zero value.
type Config struct {
	Port        *string `yaml:"port"`
	Baud        *int    `yaml:"baud"`
	URL         *string `yaml:"url"`
	Username    *string `yaml:"username"`
	NoSSLVerify *bool   `yaml:"no_ssl_verify"`
	Repeats     *int    `yaml:"repeats"`
	Format      *string `yaml:"format"`
}

// ResolvePath returns the explicit path if set, otherwise $RFSTAT_CONFIG
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvPath)
}

// Load reads and validates the file at path. An empty path yields an empty
// Config.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML and checks it against the embedded CUE schema
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func validate(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Values returns the configured settings keyed by flag name
func (c *Config) Values() map[string]string {
	values := make(map[string]string)
	if c.Port != nil {
		values["port"] = *c.Port
	}
	if c.Baud != nil {
		values["baud"] = strconv.Itoa(*c.Baud)
	}
	if c.URL != nil {
		values["url"] = *c.URL
	}
	if c.Username != nil {
		values["username"] = *c.Username
	}
	if c.NoSSLVerify != nil {
		values["no-ssl-verify"] = strconv.FormatBool(*c.NoSSLVerify)
	}
	if c.Repeats != nil {
		values["repeats"] = strconv.Itoa(*c.Repeats)
	}
	if c.Format != nil {
		values["format"] = *c.Format
	}
	return values
}

// Apply sets every configured value on fs unless the flag was given on the
// command line. Keys without a matching flag are skipped.
func (c *Config) Apply(fs *pflag.FlagSet) error {
	for name, value := range c.Values() {
		flag := fs.Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}
