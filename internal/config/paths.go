package config

import "path/filepath"

// DefaultConfigPath is read when neither --config nor PKGCTL_CONFIG is set.
const DefaultConfigPath = "/etc/pkgctl/config.toml"

// EnvFileName is the env override file read from the config directory.
const EnvFileName = "pkgctl.env"

// Paths holds resolved paths for config files.
type Paths struct {
	ConfigPath string
	EnvPath    string
}

// DefaultPaths returns the config and env file paths for a config file path.
func DefaultPaths(configPath string) Paths {
	return Paths{
		ConfigPath: configPath,
		EnvPath:    filepath.Join(filepath.Dir(configPath), EnvFileName),
	}
}

// ResolvePath picks the config path from the --config flag, then PKGCTL_CONFIG,
// then the default. explicit is true when the caller named the file.
func ResolvePath(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env, ok := lookupEnv(EnvConfig); ok && env != "" {
		return env, true
	}
	return DefaultConfigPath, false
}

// StatePath returns the deployment state file under the sysroot.
func (c *Config) StatePath() string {
	return filepath.Join(c.System.Sysroot, c.System.StateFile)
}

// PeerLockPath returns the peer lock file under the sysroot.
func (c *Config) PeerLockPath() string {
	return filepath.Join(c.System.Sysroot, c.System.PeerLock)
}
