// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/retrieve"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Answer a query from the indexed papers",
	Long: `Retrieve expands the query into paraphrases, searches the vector store
for each, and prints the matching passages with a citation block naming
the source papers. With --search it first indexes new papers matching the
query, like the index command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().Bool("search", false, "index new papers for the query before retrieving")
	retrieveCmd.Flags().String("parser", "", "PDF parser used with --search: fast-local or grobid")
	retrieveCmd.Flags().Int("k", 0, "documents returned per sub-query (default 3)")

	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if parser, _ := cmd.Flags().GetString("parser"); parser != "" {
		viper.Set("extract.strategy", parser)
	}
	if k, _ := cmd.Flags().GetInt("k"); k > 0 {
		viper.Set("retrieve.k", k)
	}

	cfg := pipelineConfig()
	ctx := cmd.Context()

	st, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to vector store: %w", err)
	}

	retriever := newRetriever(cfg, st)
	query := strings.Join(args, " ")

	var result retrieve.Result
	if search, _ := cmd.Flags().GetBool("search"); search {
		pipeline, cat, err := newIngestPipeline(cfg, st)
		if err != nil {
			return err
		}
		defer cat.Close()

		sr := retrieve.NewSearchRetriever(newIndexer(cfg, st, pipeline), retriever, os.Stderr)
		result, err = sr.Retrieve(ctx, query)
		if err != nil {
			return err
		}
	} else {
		result, err = retriever.Retrieve(ctx, query)
		if err != nil {
			return err
		}
	}

	if len(result.Documents) == 0 {
		fmt.Println("no matching passages")
		return nil
	}

	for _, doc := range result.Documents {
		fmt.Printf("--- %s ---\n%s\n\n", doc.ID, doc.Content)
	}
	fmt.Printf("Sources:\n%s\n", result.Citations)
	return nil
}
