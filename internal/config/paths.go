package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path
	EnvConfigPath = "NETOGRAPH_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "netograph.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "netograph"
)

// FindConfigPath searches for the config file in priority order:
// 1. $NETOGRAPH_CONFIG (explicit path)
// 2. ./netograph.yaml (working directory)
// 3. $XDG_CONFIG_HOME/netograph/config.yaml
// 4. ~/.config/netograph/config.yaml
// 5. /etc/netograph/config.yaml
//
// Returns empty string if no config file is found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
