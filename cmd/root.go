package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "snaphist",
	Short: "Automatic local edit history with git reconciliation",
	Long: `snaphist keeps a lightweight, automatic history of file edits so prior
states can be recovered or exported as context.

Saves are admitted through a configurable policy (every change, or only
significant multi-line changes), stored durably with stable per-file version
numbers, and folded together whenever a git commit completes: the latest
snapshot of each committed file takes the commit message as its label.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/snaphist/config.toml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "snaphist")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	// Set defaults
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("storage.path", filepath.Join(home, ".local", "share", "snaphist", "history.db"))
	} else {
		viper.SetDefault("storage.path", filepath.Join(".snaphist", "history.db"))
	}
	viper.SetDefault("admission.mode", "significant")
	viper.SetDefault("admission.changed_lines", 2)
	viper.SetDefault("snapshot.list_limit", 10)
	viper.SetDefault("reconcile.interval_seconds", 30)
	viper.SetDefault("reconcile.auto_cleanup", false)
	viper.SetDefault("export.destination", ".")
	viper.SetDefault("watch.ignore", []string{"node_modules", "*.swp", "*.tmp"})

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
