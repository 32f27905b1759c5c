// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve collects candidate documents for a set of expansion
// phrases. Two interchangeable policies exist: remote per-phrase corpus
// search and local lexical scoring against a pre-loaded snapshot. Both
// deduplicate by document identity, preserving first-seen order.
package retrieve

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/pdiddy/discovery-engine/internal/corpus"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

// RemoteRetriever forwards each phrase verbatim to a corpus source.
// Phrases are looked up sequentially, spaced by the rate limiter, so
// upstream rate limits and event ordering stay predictable. No local
// scoring is applied; the retrieval score stays neutral.
type RemoteRetriever struct {
	Source    corpus.Source
	PerPhrase int
	Limiter   *rate.Limiter
}

// NewRemoteRetriever builds a remote retriever from the corpus
// configuration.
func NewRemoteRetriever(source corpus.Source, cfg types.CorpusConfig) *RemoteRetriever {
	perPhrase := cfg.MaxPerPhrase
	if perPhrase <= 0 {
		perPhrase = 25
	}

	var limiter *rate.Limiter
	if cfg.PhraseInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.PhraseInterval), 1)
	}

	return &RemoteRetriever{
		Source:    source,
		PerPhrase: perPhrase,
		Limiter:   limiter,
	}
}

// Retrieve issues one corpus lookup per phrase and returns the
// deduplicated candidates. An unreachable corpus is fatal for the run;
// an empty result set is not an error.
func (r *RemoteRetriever) Retrieve(ctx context.Context, phrases []string) ([]types.ScoredDocument, error) {
	seen := make(map[string]bool)
	var candidates []types.ScoredDocument

	for _, phrase := range phrases {
		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		docs, err := r.Source.Search(ctx, phrase, r.PerPhrase)
		if err != nil {
			return nil, fmt.Errorf("searching %s for %q: %w", r.Source.Name(), phrase, err)
		}

		for _, doc := range docs {
			if seen[doc.Identifier] {
				continue
			}
			seen[doc.Identifier] = true
			candidates = append(candidates, types.ScoredDocument{Document: doc})
		}
	}

	return candidates, nil
}
