// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

// stopwords are dropped during tokenization. Overlap on function words
// would otherwise dominate short titles.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true,
	"with": true,
}

// LexicalRetriever scores a fixed document snapshot against the
// expansion phrases by token-set overlap. Document token sets are
// computed once at construction so repeated queries only tokenize their
// own phrases.
type LexicalRetriever struct {
	docs          []types.Document
	tokens        []map[string]bool
	maxCandidates int
}

// NewLexicalRetriever indexes the snapshot for lexical matching.
func NewLexicalRetriever(docs []types.Document, maxCandidates int) *LexicalRetriever {
	if maxCandidates <= 0 {
		maxCandidates = 50
	}

	tokens := make([]map[string]bool, len(docs))
	for i, doc := range docs {
		tokens[i] = tokenize(doc.Title + " " + doc.Summary)
	}

	return &LexicalRetriever{
		docs:          docs,
		tokens:        tokens,
		maxCandidates: maxCandidates,
	}
}

// Retrieve scores every snapshot document against every phrase and
// returns the matches in descending score order. Each phrase
// contributes its token overlap with the document normalized by the
// geometric mean of the two set sizes; a document with no overlap on
// any phrase is discarded. Ties keep snapshot order.
func (r *LexicalRetriever) Retrieve(ctx context.Context, phrases []string) ([]types.ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phraseTokens := make([]map[string]bool, 0, len(phrases))
	for _, phrase := range phrases {
		if toks := tokenize(phrase); len(toks) > 0 {
			phraseTokens = append(phraseTokens, toks)
		}
	}

	var candidates []types.ScoredDocument
	for i, doc := range r.docs {
		docToks := r.tokens[i]
		if len(docToks) == 0 {
			continue
		}

		total := 0.0
		for _, ptoks := range phraseTokens {
			overlap := 0
			for tok := range ptoks {
				if docToks[tok] {
					overlap++
				}
			}
			if overlap > 0 {
				total += float64(overlap) / math.Sqrt(float64(len(ptoks))*float64(len(docToks)))
			}
		}
		if total == 0 {
			continue
		}

		candidates = append(candidates, types.ScoredDocument{
			Document:       doc,
			RetrievalScore: total,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RetrievalScore > candidates[j].RetrievalScore
	})
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	return candidates, nil
}

// tokenize lowercases the text, splits on non-alphanumeric runs, and
// drops stopwords and single-character fragments.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if len(tok) < 2 || stopwords[tok] {
			return
		}
		tokens[tok] = true
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}
