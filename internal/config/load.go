package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/pkgctl/internal/messages"
)

// ErrConfigValidation is a sentinel that wraps config validation failures
// (as opposed to TOML syntax, filesystem, or other loading errors).
// Callers can use errors.Is(err, ErrConfigValidation) to distinguish
// validation problems from other Load failure modes.
var ErrConfigValidation = errors.New("config validation failed")

var readFile = os.ReadFile

// Load reads the config at path, applies the env file next to it and the
// process environment, and validates the result.
// When explicit is false a missing file means defaults; an explicitly named
// file must exist.
func Load(path string, explicit bool) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigExpandPathFmt, path, err)
	}
	paths := DefaultPaths(expanded)

	cfg := Default()
	source := paths.ConfigPath
	data, err := readFile(paths.ConfigPath)
	switch {
	case err == nil:
		if err := decodeInto(&cfg, data, source); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		source = "default config"
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf(messages.ConfigMissingFileFmt, paths.ConfigPath, err)
	default:
		return nil, fmt.Errorf(messages.ConfigReadFileFmt, paths.ConfigPath, err)
	}

	fileEnv, err := LoadEnvFile(paths.EnvPath)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(&cfg, fileEnv); err != nil {
		return nil, err
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w "+messages.ConfigValidationGuidance, ErrConfigValidation, err)
	}
	return &cfg, nil
}

// ParseConfig parses and validates config TOML data from a source identifier.
// data is the TOML content; source is used in error messages. Keys absent
// from data keep their defaults.
func ParseConfig(data []byte, source string) (*Config, error) {
	cfg := Default()
	if err := decodeInto(&cfg, data, source); err != nil {
		return nil, err
	}
	if err := cfg.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w "+messages.ConfigValidationGuidance, ErrConfigValidation, err)
	}
	return &cfg, nil
}

func decodeInto(cfg *Config, data []byte, source string) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf(messages.ConfigInvalidConfigFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeysFmt+" "+messages.ConfigValidationGuidance, ErrConfigValidation, source, err)
	}
	return nil
}

// decodeStrict re-decodes the TOML data with strict unknown-field rejection.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}

// expandPaths resolves a leading ~ in the sysroot and service command.
func (c *Config) expandPaths() error {
	sysroot, err := homedir.Expand(strings.TrimSpace(c.System.Sysroot))
	if err != nil {
		return fmt.Errorf(messages.ConfigExpandPathFmt, c.System.Sysroot, err)
	}
	c.System.Sysroot = sysroot
	if len(c.Service.Command) > 0 {
		bin, err := homedir.Expand(c.Service.Command[0])
		if err != nil {
			return fmt.Errorf(messages.ConfigExpandPathFmt, c.Service.Command[0], err)
		}
		c.Service.Command[0] = bin
	}
	return nil
}
