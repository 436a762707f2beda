// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var indexCmd = &cobra.Command{
	Use:   "index [query]",
	Short: "Find, download, and index papers relevant to a query",
	Long: `Index searches the web for arXiv papers matching the query, skips papers
already in the vector store, downloads the rest, and ingests their text.
The ids of newly indexed papers are printed on completion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("parser", "", "PDF parser: fast-local or grobid (default fast-local)")
	indexCmd.Flags().Int("max-results", 0, "number of web search results to consider (default 5)")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if parser, _ := cmd.Flags().GetString("parser"); parser != "" {
		viper.Set("extract.strategy", parser)
	}
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		viper.Set("locator.max_results", maxResults)
	}

	cfg := pipelineConfig()
	ctx := cmd.Context()

	st, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to vector store: %w", err)
	}

	pipeline, cat, err := newIngestPipeline(cfg, st)
	if err != nil {
		return err
	}
	defer cat.Close()

	query := strings.Join(args, " ")
	indexed, err := newIndexer(cfg, st, pipeline).IndexNewPapers(ctx, query, os.Stdout)
	if err != nil {
		return err
	}

	if len(indexed) == 0 {
		fmt.Println("nothing new to index")
		return nil
	}
	fmt.Printf("indexed: %s\n", strings.Join(indexed, ", "))
	return nil
}
