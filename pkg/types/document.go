// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the discovery-engine
// pipeline: candidate documents, progress events, and stage configuration.
package types

import (
	"strings"
	"time"
)

// Document represents a candidate paper retrieved from the corpus.
// Identifier is the stable external ID (arXiv ID or corpus key) and is
// the deduplication key across retrieval phrases.
type Document struct {
	// Identifier is the canonical ID from the source.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract or summary.
	Summary string `json:"summary" yaml:"summary"`

	// URL links to the paper's landing page.
	URL string `json:"url" yaml:"url"`

	// Published is the publication date. Zero when the source omits it.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// ScoredDocument is a Document with stage-local scores attached.
// RetrievalScore is a cheap lexical heuristic assigned during retrieval
// and is not comparable across stages. RerankScore comes from the rerank
// service and is authoritative for final ordering.
type ScoredDocument struct {
	Document `yaml:",inline"`

	RetrievalScore float64 `json:"retrieval_score" yaml:"retrieval_score"`
	RerankScore    float64 `json:"rerank_score" yaml:"rerank_score"`
}

// RankedResult is a reranked document with its natural-language
// justification, as delivered in the final results event.
type RankedResult struct {
	ScoredDocument `yaml:",inline"`

	Justification string `json:"justification" yaml:"justification"`
}

// Query is a discovery request: free-text description plus the number
// of ranked results the caller wants back.
type Query struct {
	Text string `json:"query"`
	TopK int    `json:"top_k"`
}

// IsEmpty reports whether the query contains no searchable text.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == ""
}
