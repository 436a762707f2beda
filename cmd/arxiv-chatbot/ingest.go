// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Chunk and index local PDF files",
	Long: `Ingest adds local PDFs to the vector store: a directory (all PDFs inside
it), a single PDF, or a list of PDFs. Metadata is derived from the papers
themselves via GROBID header processing, or from YAML sidecars when a
previous fetch left them next to the files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("parser", "", "PDF parser: fast-local or grobid (default fast-local)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if parser, _ := cmd.Flags().GetString("parser"); parser != "" {
		viper.Set("extract.strategy", parser)
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

	if _, err := pipeline.Ingest(ctx, args, nil, os.Stdout); err != nil {
		return err
	}
	return nil
}
