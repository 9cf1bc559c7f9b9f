package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/sadopc/tminus/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.Save(path, config.DefaultConfig()); err != nil {
			return err
		}
		if !quiet {
			out("Wrote %s\n", path)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if quiet {
			outln(configFilePath())
			return nil
		}
		out("# %s\n\n", configFilePath())
		return toml.NewEncoder(outWriter).Encode(cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show file locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		out("config: %s\n", configFilePath())
		out("db:     %s\n", cfg.ResolvedDBPath())
		logPath := cfg.Log.File
		if logPath == "" {
			logPath = config.LogFile()
		}
		out("log:    %s\n", logPath)
		return nil
	},
}

func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigFile()
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
