package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/kafka"
)

const publishBatchSize = 100

var publishFile string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a JSON lines file to the ingest topic",
	Args:  cobra.NoArgs,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "JSON lines file to publish")
	publishCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	docs, err := readDocumentsFile(publishFile)
	if err != nil {
		return err
	}

	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	events := make([]kafka.Event, 0, publishBatchSize)
	for i, doc := range docs {
		events = append(events, ingest.EventFor(doc))
		if len(events) == publishBatchSize || i == len(docs)-1 {
			if err := producer.Publish(cmd.Context(), events...); err != nil {
				return err
			}
			events = events[:0]
		}
	}
	slog.Info("documents published", "count", len(docs), "topic", cfg.Kafka.IngestTopic)
	fmt.Fprintf(cmd.OutOrStdout(), "published %d documents to %s\n", len(docs), cfg.Kafka.IngestTopic)
	return nil
}
