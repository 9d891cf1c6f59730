/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thomascherickal/june/internal/june/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "june",
	Short: "A conversational front-end for a locally served language model",
	Long: `june maintains multi-turn conversations against a locally served
causal language model. It keeps per-conversation message histories in
memory, drives one generation call per turn, and cleans the raw token
stream (prompt echo, sequence markers) before output reaches you.
You can configure the tool using a TOML configuration file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/june/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("JUNE")
	viper.AutomaticEnv()

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "june")

	// Create default config with multiple persona directories
	// Note: Later directories in the array take precedence over earlier ones
	defaultPersonaDirs := []string{
		"/usr/share/june/personas",               // System package personas (lowest priority)
		"/usr/local/share/june/personas",         // Local install personas (low priority)
		filepath.Join(userConfigDir, "personas"), // User-specific personas (highest priority)
	}
	defaultConfig := config.NewDefaultConfig(filepath.Join(userConfigDir, "personas"))

	// Set default values from the config package
	viper.SetDefault("backend", defaultConfig.Backend)
	viper.SetDefault("model", defaultConfig.Model)
	viper.SetDefault("base_url", defaultConfig.BaseURL)
	viper.SetDefault("device", defaultConfig.Device)
	viper.SetDefault("system_prompt", defaultConfig.SystemPrompt)
	viper.SetDefault("bos_token", defaultConfig.BOSToken)
	viper.SetDefault("eos_token", defaultConfig.EOSToken)
	viper.SetDefault("eos_token_id", defaultConfig.EOSTokenID)
	viper.SetDefault("persona_dirs", defaultPersonaDirs)
	viper.SetDefault("max_contexts", defaultConfig.MaxContexts)
	viper.SetDefault("context_ttl", defaultConfig.ContextTTL)

	// Bind environment variables
	viper.BindEnv("backend", "JUNE_BACKEND")
	viper.BindEnv("model", "JUNE_MODEL")
	viper.BindEnv("base_url", "JUNE_BASE_URL")
	viper.BindEnv("device", "JUNE_DEVICE")
	viper.BindEnv("system_prompt", "JUNE_SYSTEM_PROMPT")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/june",
			"/usr/local/etc/june",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			// Merge user config on top of system config
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			// No system config, just read user config
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  JUNE_BACKEND:", viper.GetString("backend"))
		fmt.Fprintln(os.Stderr, "  JUNE_MODEL:", viper.GetString("model"))
		fmt.Fprintln(os.Stderr, "  JUNE_BASE_URL:", viper.GetString("base_url"))
		fmt.Fprintln(os.Stderr, "  JUNE_DEVICE:", viper.GetString("device"))
		fmt.Fprintln(os.Stderr, "  JUNE_PERSONA_DIRS:", viper.GetStringSlice("persona_dirs"))
	}
}
