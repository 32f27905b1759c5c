// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rerank orders candidate documents by semantic relevance using
// a Cohere-style rerank API. Candidates are scored in a single batched
// request and returned in descending relevance order.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"unicode/utf8"

	"github.com/pdiddy/discovery-engine/internal/httputil"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

const defaultBaseURL = "https://api.cohere.com"

// Client calls the rerank endpoint of a Cohere-compatible API.
type Client struct {
	BaseURL    string
	Model      string
	APIKey     string
	Client     *http.Client
	charBudget int
	userAgent  string
}

// NewClient builds a rerank client from the configuration. The API key
// is required.
func NewClient(cfg types.RerankConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Cohere API key is not configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	charBudget := cfg.DocumentCharBudget
	if charBudget <= 0 {
		charBudget = 2000
	}

	return &Client{
		BaseURL:    baseURL,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		Client:     httputil.NewClient(cfg.Timeout),
		charBudget: charBudget,
		userAgent:  cfg.UserAgent,
	}, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

// rerankEntry uses raw fields so one malformed entry does not fail the
// whole batch.
type rerankEntry struct {
	Index          json.RawMessage `json:"index"`
	RelevanceScore json.RawMessage `json:"relevance_score"`
}

type rerankResponse struct {
	Results []rerankEntry `json:"results"`
}

// Rerank scores the candidates against the query and returns at most
// topK of them, ordered by descending relevance. Entries with an
// invalid or out-of-range index are dropped; an entry whose score does
// not parse keeps its place with a zero score. The call fails only when
// the response body is not JSON or when no entry yields a usable index.
func (c *Client) Rerank(ctx context.Context, query string, docs []types.ScoredDocument, topK int) ([]types.ScoredDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = c.documentText(doc.Document)
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     c.Model,
		Query:     query,
		Documents: texts,
		TopN:      len(docs),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/rerank", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling rerank API: %w", err)
	}
	defer httputil.DrainClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, httputil.ErrorFromResponse("rerank API", resp)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}

	ranked := make([]types.ScoredDocument, 0, len(parsed.Results))
	for _, entry := range parsed.Results {
		var index int
		if err := json.Unmarshal(entry.Index, &index); err != nil {
			continue
		}
		if index < 0 || index >= len(docs) {
			continue
		}

		var score float64
		if err := json.Unmarshal(entry.RelevanceScore, &score); err != nil {
			score = 0
		}

		doc := docs[index]
		doc.RerankScore = score
		ranked = append(ranked, doc)
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("rerank response contained no usable results")
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RerankScore > ranked[j].RerankScore
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	return ranked, nil
}

// documentText flattens a document into the text the rerank model
// scores, truncated to the configured character budget.
func (c *Client) documentText(doc types.Document) string {
	text := doc.Title
	if doc.Summary != "" {
		text += "\n" + doc.Summary
	}
	if len(text) > c.charBudget {
		cut := c.charBudget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
