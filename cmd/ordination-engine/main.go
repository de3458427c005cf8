// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ordination-engine CLI.
// Each pipeline stage is a subcommand: run, scores, plot, envfit, and
// archive. Stages hand results to each other through YAML result files.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the ordination-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "ordination-engine",
	Short: "Ordination toolchain for ecological community data",
	Long: `ordination-engine runs unconstrained ordinations (PCA, correspondence
analysis, NMDS) over sites-by-species community tables and turns the
results into score tables, diagrams, and environmental fits.

Each stage is a subcommand: run computes an ordination and writes a result
file; scores, plot, and envfit consume that file without recomputing; and
archive keeps a SQLite catalog of past runs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ordination-engine.yaml or ~/.config/ordination-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ordination-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ordination-engine"))
		}
	}

	viper.SetEnvPrefix("ORDINATION_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
