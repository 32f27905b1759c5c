// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.CorpusConfig{CorpusDir: t.TempDir()}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing seed: %v", err)
	}
	return path
}

const yamlSeed = `
- identifier: "2007.09876"
  title: Quantum Advantage in Noisy Devices
  summary: Survey of algorithms demonstrating quantum advantage.
  url: https://arxiv.org/abs/2007.09876
  published: 2020-07-20T00:00:00Z
  authors: [Jane Doe, John Roe]
- identifier: "2301.00001"
  title: Scaling Instruction-Following
  summary: Alignment strategies for large models.
  url: https://arxiv.org/abs/2301.00001
`

func TestIngestAndLoadAll(t *testing.T) {
	store := newTestStore(t)
	path := writeSeed(t, "seed.yaml", yamlSeed)

	summary, err := store.Ingest(context.Background(), path, io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Ingested != 2 || summary.Updated != 0 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 2 ingested", summary)
	}

	docs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}

	// Ordered by identifier.
	if docs[0].Identifier != "2007.09876" || docs[1].Identifier != "2301.00001" {
		t.Errorf("order = %q, %q", docs[0].Identifier, docs[1].Identifier)
	}

	first := docs[0]
	if first.Title != "Quantum Advantage in Noisy Devices" {
		t.Errorf("Title = %q", first.Title)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", first.Authors)
	}
	want := time.Date(2020, 7, 20, 0, 0, 0, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", first.Published, want)
	}
	if !docs[1].Published.IsZero() {
		t.Errorf("Published = %v, want zero when seed omits it", docs[1].Published)
	}
}

func TestIngestJSONSeed(t *testing.T) {
	store := newTestStore(t)
	path := writeSeed(t, "seed.json",
		`[{"identifier": "1234.56789", "title": "Example", "summary": "S", "url": "https://arxiv.org/abs/1234.56789"}]`)

	summary, err := store.Ingest(context.Background(), path, io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Ingested != 1 {
		t.Errorf("summary = %+v, want 1 ingested", summary)
	}
}

func TestIngestUpsertsExisting(t *testing.T) {
	store := newTestStore(t)

	first := writeSeed(t, "first.yaml", `
- identifier: "2007.09876"
  title: Old Title
  summary: Old summary.
`)
	if _, err := store.Ingest(context.Background(), first, io.Discard); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	second := writeSeed(t, "second.yaml", `
- identifier: "2007.09876"
  title: New Title
  summary: New summary.
`)
	summary, err := store.Ingest(context.Background(), second, io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Updated != 1 || summary.Ingested != 0 {
		t.Errorf("summary = %+v, want 1 updated", summary)
	}

	docs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "New Title" {
		t.Errorf("docs = %+v, want single updated record", docs)
	}
}

func TestIngestSkipsRecordsWithoutIdentifier(t *testing.T) {
	store := newTestStore(t)
	path := writeSeed(t, "seed.yaml", `
- title: No identifier here
  summary: Should be skipped.
- identifier: "9999.00001"
  title: Valid
  summary: Kept.
`)

	summary, err := store.Ingest(context.Background(), path, io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Skipped != 1 || summary.Ingested != 1 {
		t.Errorf("summary = %+v, want 1 skipped and 1 ingested", summary)
	}
	if summary.Total() != 2 {
		t.Errorf("Total() = %d, want 2", summary.Total())
	}
}

func TestIngestErrors(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), io.Discard); err == nil {
		t.Error("Ingest() = nil error for missing file")
	}

	bad := writeSeed(t, "bad.json", `{"not": "a list"`)
	if _, err := store.Ingest(context.Background(), bad, io.Discard); err == nil {
		t.Error("Ingest() = nil error for malformed seed")
	}
}

func TestLoadAllEmptySnapshot(t *testing.T) {
	store := newTestStore(t)
	docs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("len(docs) = %d, want 0", len(docs))
	}
}
