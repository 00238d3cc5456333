package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/memindex/pkg/errors"
)

const sampleDocs = `{"doc_id": 1, "tokens": ["hello", "doc"], "fields": {"title": "Hello Doc"}}

{"doc_id": 2, "text": "Hello world, hello again"}
`

func TestReadDocuments(t *testing.T) {
	docs, err := readDocuments(strings.NewReader(sampleDocs))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, index.DocID(1), docs[0].ID)
	assert.Equal(t, []string{"hello", "doc"}, docs[0].Tokens)
	assert.Equal(t, "Hello Doc", docs[0].Fields["title"])
	assert.Equal(t, "Hello world, hello again", docs[1].Text)
}

func TestReadDocumentsErrors(t *testing.T) {
	_, err := readDocuments(strings.NewReader("{\"doc_id\": 1, \"tokens\": [\"a\"]}\n{broken"))
	assert.ErrorContains(t, err, "line 2")

	_, err = readDocuments(strings.NewReader(`{"doc_id": 4}`))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLoadCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocs), 0o644))
	t.Setenv("MI_INDEX_PAYLOAD_POLICY", "frequency")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"load", "--file", path, "-t", "hello", "-t", "missing", "--postings"})
	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "indexed 2 documents, 4 terms")
	assert.Contains(t, got, "hello: [1 2]\n")
	assert.Contains(t, got, `  2 {"frequency":2}`)
	assert.Contains(t, got, "missing: []\n")
}
