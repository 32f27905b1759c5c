// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the discovery stages: query expansion,
// candidate retrieval, reranking, and per-candidate explanation. Each
// stage's outcome is reported through an emit callback as a typed
// event, in a fixed order, so transports can stream progress without
// knowing stage internals.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

// Validation errors, returned before any event is emitted.
var (
	ErrEmptyQuery = errors.New("query must not be empty")
	ErrTopKRange  = errors.New("top_k is out of range")
)

// Expander produces search phrases for a query.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// Retriever collects candidate documents for the expansion phrases.
type Retriever interface {
	Retrieve(ctx context.Context, phrases []string) ([]types.ScoredDocument, error)
}

// Reranker orders candidates by relevance to the query, keeping at most
// topK of them.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []types.ScoredDocument, topK int) ([]types.ScoredDocument, error)
}

// Explainer justifies one document's relevance to the query.
type Explainer interface {
	Explain(ctx context.Context, query string, doc types.Document) (string, error)
}

// EmitFunc delivers one event to the client. A non-nil return means the
// client is gone and the run must stop.
type EmitFunc func(types.Event) error

// Pipeline runs the discovery stages in order. It holds no per-run
// state; one Pipeline serves concurrent runs.
type Pipeline struct {
	Expander  Expander
	Retriever Retriever
	Reranker  Reranker
	Explainer Explainer

	DefaultTopK int
	MaxTopK     int
}

// New builds a pipeline with the discovery limits from the
// configuration.
func New(expander Expander, retriever Retriever, reranker Reranker, explainer Explainer, cfg types.DiscoveryConfig) *Pipeline {
	defaultTopK := cfg.DefaultTopK
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	maxTopK := cfg.MaxTopK
	if maxTopK <= 0 {
		maxTopK = 10
	}

	return &Pipeline{
		Expander:    expander,
		Retriever:   retriever,
		Reranker:    reranker,
		Explainer:   explainer,
		DefaultTopK: defaultTopK,
		MaxTopK:     maxTopK,
	}
}

// Validate normalizes the query and resolves its top_k. It is called by
// Run but exported so transports can reject bad requests before opening
// a stream.
func (p *Pipeline) Validate(query types.Query) (types.Query, error) {
	if query.IsEmpty() {
		return query, ErrEmptyQuery
	}
	query.Text = strings.TrimSpace(query.Text)
	if query.TopK < 0 || query.TopK > p.MaxTopK {
		return query, fmt.Errorf("%w: got %d, want 1 to %d", ErrTopKRange, query.TopK, p.MaxTopK)
	}
	if query.TopK == 0 {
		query.TopK = p.DefaultTopK
	}
	return query, nil
}

// Run executes the full discovery sequence for one query, delivering
// progress through emit. Validation failures return before any event.
// Any stage failure emits exactly one error event and stops; nothing is
// emitted after a results or error event.
func (p *Pipeline) Run(ctx context.Context, query types.Query, emit EmitFunc) error {
	query, err := p.Validate(query)
	if err != nil {
		return err
	}

	// Expansion.
	if err := emit(statusEvent(types.StageExpand, "expanding query")); err != nil {
		return err
	}
	phrases, err := p.Expander.Expand(ctx, query.Text)
	if err != nil {
		return p.fail(emit, types.StageExpand, err)
	}
	err = emit(types.Event{
		Type:      types.EventExpansion,
		Stage:     types.StageExpand,
		Expansion: &types.ExpansionPayload{Expansions: phrases},
	})
	if err != nil {
		return err
	}

	// Retrieval.
	if err := emit(statusEvent(types.StageRetrieve, "retrieving candidates")); err != nil {
		return err
	}
	candidates, err := p.Retriever.Retrieve(ctx, phrases)
	if err != nil {
		return p.fail(emit, types.StageRetrieve, err)
	}
	summaries := make([]types.CandidateSummary, len(candidates))
	for i, c := range candidates {
		summaries[i] = types.CandidateSummary{Identifier: c.Identifier, Title: c.Title}
	}
	err = emit(types.Event{
		Type:      types.EventRetrieval,
		Stage:     types.StageRetrieve,
		Retrieval: &types.RetrievalPayload{Count: len(candidates), Candidates: summaries},
	})
	if err != nil {
		return err
	}

	// No candidates is a successful empty run, not a failure.
	if len(candidates) == 0 {
		return emit(types.Event{
			Type:    types.EventResults,
			Message: "no matching documents",
			Results: &types.ResultsPayload{Results: []types.RankedResult{}},
		})
	}

	// Reranking.
	if err := emit(statusEvent(types.StageRank, "reranking candidates")); err != nil {
		return err
	}
	ranked, err := p.Reranker.Rerank(ctx, query.Text, candidates, query.TopK)
	if err != nil {
		return p.fail(emit, types.StageRank, err)
	}
	entries := make([]types.RankEntry, len(ranked))
	for i, c := range ranked {
		entries[i] = types.RankEntry{Identifier: c.Identifier, Score: c.RerankScore}
	}
	err = emit(types.Event{
		Type:    types.EventRanking,
		Stage:   types.StageRank,
		Ranking: &types.RankingPayload{Ranked: entries},
	})
	if err != nil {
		return err
	}

	// Explanation, in rank order.
	if err := emit(statusEvent(types.StageExplain, "explaining results")); err != nil {
		return err
	}
	results := make([]types.RankedResult, 0, len(ranked))
	for _, c := range ranked {
		justification, err := p.Explainer.Explain(ctx, query.Text, c.Document)
		if err != nil {
			return p.fail(emit, types.StageExplain, err)
		}
		err = emit(types.Event{
			Type:  types.EventExplanation,
			Stage: types.StageExplain,
			Explanation: &types.ExplanationPayload{
				Identifier:    c.Identifier,
				Justification: justification,
			},
		})
		if err != nil {
			return err
		}
		results = append(results, types.RankedResult{
			ScoredDocument: c,
			Justification:  justification,
		})
	}

	return emit(types.Event{
		Type:    types.EventResults,
		Results: &types.ResultsPayload{Results: results},
	})
}

func statusEvent(stage types.Stage, message string) types.Event {
	return types.Event{Type: types.EventStatus, Stage: stage, Message: message}
}

// fail emits the run's single error event and returns the stage error.
// An emit failure at this point changes nothing; the run is over either
// way.
func (p *Pipeline) fail(emit EmitFunc, stage types.Stage, err error) error {
	_ = emit(types.Event{
		Type:    types.EventError,
		Stage:   stage,
		Message: err.Error(),
	})
	return err
}
