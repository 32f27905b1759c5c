// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "corpus.db"
)

// Store manages the local corpus snapshot SQLite database. The snapshot
// is written by `discovery-engine corpus load` and read once at process
// start; pipeline runs never write to it.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the snapshot database at
// corpusDir/index/corpus.db, creating the schema if needed.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CorpusDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		identifier TEXT PRIMARY KEY,
		title TEXT,
		summary TEXT,
		url TEXT,
		published TEXT,
		authors TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// IngestSummary holds counts from a snapshot load run.
type IngestSummary struct {
	Ingested int
	Updated  int
	Skipped  int
}

// Total returns the number of seed records processed.
func (s IngestSummary) Total() int {
	return s.Ingested + s.Updated + s.Skipped
}

// Ingest reads a seed file of documents (YAML or JSON, by extension) and
// upserts them into the snapshot. Records without an identifier are
// skipped with a warning on w.
func (s *Store) Ingest(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading seed file %s: %w", path, err)
	}

	var docs []types.Document
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &docs)
	} else {
		err = yaml.Unmarshal(data, &docs)
	}
	if err != nil {
		return IngestSummary{}, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (identifier, title, summary, url, published, authors)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET
			title=excluded.title, summary=excluded.summary, url=excluded.url,
			published=excluded.published, authors=excluded.authors`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	var summary IngestSummary
	for i, doc := range docs {
		if doc.Identifier == "" {
			fmt.Fprintf(w, "skipped record %d: missing identifier\n", i)
			summary.Skipped++
			continue
		}

		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM documents WHERE identifier = ?`, doc.Identifier,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking document %s: %w", doc.Identifier, err)
		}

		authorsJSON, _ := json.Marshal(doc.Authors)
		published := ""
		if !doc.Published.IsZero() {
			published = doc.Published.Format(time.RFC3339)
		}

		if _, err := stmt.ExecContext(ctx,
			doc.Identifier, doc.Title, doc.Summary, doc.URL, published, string(authorsJSON),
		); err != nil {
			return summary, fmt.Errorf("upserting document %s: %w", doc.Identifier, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Ingested++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing snapshot: %w", err)
	}

	fmt.Fprintf(w, "ingested: %d, updated: %d, skipped: %d\n",
		summary.Ingested, summary.Updated, summary.Skipped)
	return summary, nil
}

// LoadAll reads the entire snapshot into memory, ordered by identifier
// so repeated loads produce the same candidate order. The returned slice
// is shared read-only across concurrent pipeline runs.
func (s *Store) LoadAll(ctx context.Context) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, title, summary, url, published, authors
		 FROM documents ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("querying corpus snapshot: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var (
			doc         types.Document
			published   sql.NullString
			authorsJSON sql.NullString
		)
		if err := rows.Scan(&doc.Identifier, &doc.Title, &doc.Summary, &doc.URL,
			&published, &authorsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if published.Valid && published.String != "" {
			if t, parseErr := time.Parse(time.RFC3339, published.String); parseErr == nil {
				doc.Published = t
			}
		}
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &doc.Authors)
		}

		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
