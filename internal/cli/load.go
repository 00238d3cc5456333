package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/docstore/backend"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/index"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/metrics"
)

var (
	loadFile     string
	loadTerms    []string
	loadPostings bool
	loadDump     bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Index a JSON lines file and look up terms",
	Long: `Index every document of a JSON lines file, one event per line:

  {"doc_id": 1, "tokens": ["hello", "doc"], "fields": {"title": "Hello Doc"}}
  {"doc_id": 2, "text": "Hello world"}

then print index statistics and the documents containing each --term.`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadFile, "file", "f", "", "JSON lines file to index")
	loadCmd.Flags().StringSliceVarP(&loadTerms, "term", "t", nil, "term to look up (repeatable)")
	loadCmd.Flags().BoolVar(&loadPostings, "postings", false, "print payloads of each looked up term")
	loadCmd.Flags().BoolVar(&loadDump, "dump", false, "print the whole index as JSON")
	loadCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(loadCmd)
}

// newEngine opens the configured document store and builds an engine on it.
func newEngine(ctx context.Context, m *metrics.Metrics) (*engine.Engine, docstore.Store, error) {
	store, err := backend.Open(ctx, cfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("opening docstore: %w", err)
	}
	opts := []engine.Option{engine.WithMetrics(m)}
	if store != nil {
		opts = append(opts, engine.WithDocStore(store))
	}
	return engine.New(cfg, opts...), store, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	docs, err := readDocumentsFile(loadFile)
	if err != nil {
		return err
	}

	eng, _, err := newEngine(ctx, metrics.New(nil))
	if err != nil {
		return err
	}
	defer eng.Close()

	start := time.Now()
	if err := eng.IndexDocuments(ctx, docs); err != nil {
		return err
	}
	elapsed := time.Since(start)

	stats, err := eng.Stats(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "indexed %d documents, %d terms in %s\n", stats.Documents, stats.Terms, elapsed.Round(time.Microsecond))

	for _, term := range loadTerms {
		if err := printLookup(out, eng, term); err != nil {
			return err
		}
	}

	if loadDump {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(eng.Index().Snapshot()); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
	}
	return nil
}

func printLookup(out io.Writer, eng *engine.Engine, term string) error {
	ids := eng.Lookup(term).Sorted()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = fmt.Sprint(id)
	}
	fmt.Fprintf(out, "%s: [%s]\n", term, strings.Join(strs, " "))
	if !loadPostings || len(ids) == 0 {
		return nil
	}
	pl, err := eng.Postings(term)
	if err != nil {
		return err
	}
	var rangeErr error
	pl.Range(func(docID index.DocID, payload index.Payload) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			rangeErr = fmt.Errorf("encoding payload of %d: %w", docID, err)
			return false
		}
		fmt.Fprintf(out, "  %d %s\n", docID, data)
		return true
	})
	return rangeErr
}
