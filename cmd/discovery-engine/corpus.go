// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/discovery-engine/internal/corpus"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local corpus snapshot",
	Long: `Corpus manages the SQLite snapshot used by local retrieval mode.
Use subcommands to load a document seed or list the stored documents.`,
}

// --- load subcommand ---

var corpusLoadCmd = &cobra.Command{
	Use:   "load [seed-file]",
	Short: "Ingest a JSON or YAML document seed into the snapshot",
	Long: `Load reads a seed file of documents and upserts them into
<corpus-dir>/index/corpus.db. Existing documents with the same
identifier are updated; documents without an identifier are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusLoad,
}

func runCorpusLoad(cmd *cobra.Command, args []string) error {
	store, err := openCorpusStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d records: %d ingested, %d updated, %d skipped\n",
		summary.Total(), summary.Ingested, summary.Updated, summary.Skipped)
	return nil
}

// --- list subcommand ---

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the documents in the snapshot",
	RunE:  runCorpusList,
}

func runCorpusList(cmd *cobra.Command, args []string) error {
	store, err := openCorpusStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.LoadAll(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	for _, doc := range docs {
		fmt.Printf("%-18s  %s\n", doc.Identifier, doc.Title)
	}
	fmt.Printf("\n%d documents\n", len(docs))
	return nil
}

// --- shared helpers ---

func openCorpusStore(cmd *cobra.Command) (*corpus.Store, error) {
	cfg := pipelineConfig().Corpus
	if dir, _ := cmd.Flags().GetString("corpus-dir"); dir != "" {
		cfg.CorpusDir = dir
	}
	return corpus.NewStore(cfg)
}

func init() {
	corpusCmd.PersistentFlags().String("corpus-dir", "", "corpus base directory (default: corpus)")
	corpusListCmd.Flags().Bool("json", false, "output documents as JSON")

	corpusCmd.AddCommand(corpusLoadCmd)
	corpusCmd.AddCommand(corpusListCmd)
	rootCmd.AddCommand(corpusCmd)
}
