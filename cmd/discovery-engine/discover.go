// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [query]",
	Short: "Run a discovery and stream events to stdout",
	Long: `Discover runs the full pipeline for one query: expansion, retrieval,
reranking, and explanation. Progress events are printed to stdout as
newline-delimited JSON, the same framing the HTTP API uses.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	query := types.Query{Text: strings.Join(args, " "), TopK: topK}

	p, err := buildPipeline(cmd.Context(), pipelineConfig())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	return p.Run(cmd.Context(), query, func(ev types.Event) error {
		return enc.Encode(ev)
	})
}

func init() {
	discoverCmd.Flags().Int("top-k", 0, "number of results to return (default from config)")

	rootCmd.AddCommand(discoverCmd)
}
