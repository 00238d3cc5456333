// Package cli implements the memindex command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "memindex",
	Short: "In-memory inverted index for token streams",
	Long: `memindex builds an in-memory inverted index from documents and answers
term lookups. Documents come from JSON lines files or a Kafka topic; their
content can be kept in memory, BadgerDB, bbolt, Redis or PostgreSQL.

Example usage:
  memindex load -f docs.jsonl -t hello -t world   # Index a file and look up terms
  memindex publish -f docs.jsonl                  # Send documents to the ingest topic
  memindex ingest                                 # Consume the ingest topic`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// stdout carries command output
		slog.SetDefault(logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults plus MI_* environment when empty)")
}
