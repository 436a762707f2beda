// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raihanfadhilah/arxiv-chatbot/internal/catalog"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List indexed papers",
	Long: `Papers lists the local catalog of indexed papers: id, title, authors,
and chunk count, newest first. The catalog is written during ingestion and
does not require a running vector store.`,
	RunE: runPapers,
}

func init() {
	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	cat, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no papers indexed")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %s\n", e.PaperID, e.Title)
		if len(e.Authors) > 0 {
			fmt.Printf("    %s\n", strings.Join(e.Authors, ", "))
		}
		fmt.Printf("    %d chunks, indexed %s\n", e.Chunks, e.IndexedAt.Format("2006-01-02"))
	}
	fmt.Printf("\n%d paper(s) indexed\n", len(entries))
	return nil
}
