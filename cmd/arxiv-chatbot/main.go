// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-chatbot CLI.
// Each pipeline stage is a subcommand: index finds and ingests papers for
// a query, ingest processes local PDFs, retrieve answers queries from the
// vector store, and papers lists what has been indexed.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretOrEnv returns the secret for key, falling back to the given
// environment variable (which godotenv may have populated from .env).
func secretOrEnv(key, envName string) string {
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return os.Getenv(envName)
}

// rootCmd is the base command for the arxiv-chatbot CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-chatbot",
	Short: "Retrieval pipeline for arXiv research questions",
	Long: `arxiv-chatbot maintains a searchable vector index of arXiv papers. The
index command finds papers relevant to a query on the web, downloads them,
and ingests their text; retrieve answers questions from the index, citing
the source papers; ingest adds local PDFs; papers lists what is indexed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-chatbot.yaml or ~/.config/arxiv-chatbot/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arxiv-chatbot")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-chatbot"))
		}
	}

	viper.SetEnvPrefix("ARXIV_CHATBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	// Local development keeps API keys in .env; absence is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
