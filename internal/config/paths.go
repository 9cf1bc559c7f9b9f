package config

import (
	"os"
	"path/filepath"
)

const appName = "tminus"

func ConfigDir() string {
	if v := os.Getenv("TMINUS_CONFIG_DIR"); v != "" {
		return v
	}
	return filepath.Join(userConfigDir(), appName)
}

func StateDir() string {
	if v := os.Getenv("TMINUS_STATE_DIR"); v != "" {
		return v
	}
	return filepath.Join(userStateDir(), appName)
}

func ConfigFile() string { return filepath.Join(ConfigDir(), "config.toml") }
func DBFile() string     { return filepath.Join(StateDir(), "tminus.db") }
func LogFile() string    { return filepath.Join(StateDir(), "tminus.log") }

func userConfigDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func userStateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}
