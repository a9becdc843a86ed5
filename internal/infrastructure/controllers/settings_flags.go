package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// AddGlobalFlags declares the flags every subcommand inherits.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")
	cmd.PersistentFlags().Duration("timeout", 0,
		"Abort the command after this duration (overrides the config)")
	cmd.PersistentFlags().String("encoding", "",
		"Charset of the tool output, such as ISO-8859-1 (overrides the config)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"Print the tool command lines without running them")
}

// settingsFromFlags loads the config file and applies the global flags on top of it.
func settingsFromFlags(cmd *cobra.Command, load entities.SettingsLoader) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := load(configPath)
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		settings.Verbose = true
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		settings.Timeout = timeout
	}
	if encoding, _ := cmd.Flags().GetString("encoding"); encoding != "" {
		settings.Encoding = encoding
	}
	settings.DryRun, _ = cmd.Flags().GetBool("dry-run")
	if settings.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	return settings, nil
}
