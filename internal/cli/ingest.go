package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/backend"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/metrics"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Consume the ingest topic into an in-memory index",
	Long: `Consume documents from the Kafka ingest topic until interrupted. Metrics
and health probes are served on metrics.port (/metrics, /healthz, /readyz).`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	eng, store, err := newEngine(ctx, m)
	if err != nil {
		return err
	}
	defer eng.Close()

	checker := health.NewChecker()
	if p, ok := store.(backend.Pinger); ok {
		checker.RegisterPing("docstore", p.Ping)
	}

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg, checker)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	consumer := kafka.NewConsumer(cfg.Kafka, ingest.Handler(eng, m))
	slog.Info("ingest ready, consuming from kafka",
		"topic", cfg.Kafka.IngestTopic,
		"group", cfg.Kafka.ConsumerGroup,
		"docstore", cfg.DocStore.Backend,
	)
	runErr := consumer.Start(ctx)
	if runErr != nil {
		slog.Error("consumer stopped", "error", runErr)
	}

	stats, err := eng.Stats(context.Background())
	if err != nil {
		slog.Warn("reading final stats", "error", err)
	}
	slog.Info("ingest stopped", "documents", stats.Documents, "terms", stats.Terms)
	return runErr
}
