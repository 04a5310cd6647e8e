package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/conn-castle/pkgctl/internal/messages"
)

// Environment variables recognised by pkgctl.
const (
	EnvConfig    = "PKGCTL_CONFIG"
	EnvSysroot   = "PKGCTL_SYSROOT"
	EnvOSName    = "PKGCTL_OSNAME"
	EnvTransport = "PKGCTL_TRANSPORT"
	EnvEndpoint  = "PKGCTL_ENDPOINT"
	EnvLogLevel  = "PKGCTL_LOG_LEVEL"
)

const envPrefix = "PKGCTL_"

var lookupEnv = os.LookupEnv

// LoadEnvFile reads the env override file at path into a key-value map.
// A missing file yields an empty map. Keys outside the PKGCTL_ namespace are dropped.
func LoadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf(messages.ConfigInvalidEnvFileFmt, path, err)
	}
	return filterPkgctlEnv(env), nil
}

// filterPkgctlEnv restricts env values to the PKGCTL_ namespace.
func filterPkgctlEnv(env map[string]string) map[string]string {
	filtered := make(map[string]string, len(env))
	for key, value := range env {
		if strings.HasPrefix(key, envPrefix) {
			filtered[key] = value
		}
	}
	return filtered
}

// applyOverrides sets every field with an Env in the catalog from the process
// environment, falling back to fileEnv. Process values win.
func applyOverrides(cfg *Config, fileEnv map[string]string) error {
	for _, field := range fields {
		if field.Env == "" {
			continue
		}
		value, ok := lookupEnv(field.Env)
		if !ok {
			value, ok = fileEnv[field.Env]
		}
		if !ok {
			continue
		}
		if err := setField(cfg, field.Key, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}

func setField(cfg *Config, key string, value string) error {
	switch key {
	case "service.transport":
		cfg.Service.Transport = value
	case "service.endpoint":
		cfg.Service.Endpoint = value
	case "system.sysroot":
		cfg.System.Sysroot = value
	case "system.osname":
		cfg.System.OSName = value
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	default:
		return fmt.Errorf(messages.ConfigNoEnvOverrideFmt, key)
	}
	return nil
}
