// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/discovery-engine/internal/httputil"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

// defaultArxivAPIURL is the public arXiv search endpoint.
const defaultArxivAPIURL = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv API for one phrase at a time.
type ArxivSource struct {
	Client    *http.Client
	APIURL    string
	UserAgent string
}

// NewArxivSource builds an arXiv source from the corpus configuration.
func NewArxivSource(cfg types.CorpusConfig) *ArxivSource {
	apiURL := cfg.ArxivAPIURL
	if apiURL == "" {
		apiURL = defaultArxivAPIURL
	}
	return &ArxivSource{
		Client:    httputil.NewClient(cfg.Timeout),
		APIURL:    apiURL,
		UserAgent: cfg.UserAgent,
	}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search queries the arXiv API with the phrase and returns normalized
// documents, at most limit of them, sorted by arXiv's own relevance.
func (s *ArxivSource) Search(ctx context.Context, phrase string, limit int) ([]types.Document, error) {
	terms := strings.Fields(phrase)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query phrase")
	}
	if limit <= 0 {
		limit = 25
	}

	params := url.Values{
		"search_query": {"all:" + strings.Join(terms, "+")},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httputil.ErrorFromResponse("arXiv API", resp)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var docs []types.Document
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		doc := types.Document{
			Identifier: arxivID,
			Title:      collapseWhitespace(entry.Title),
			Summary:    collapseWhitespace(entry.Summary),
			URL:        entry.landingURL(),
		}

		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				doc.Authors = append(doc.Authors, name)
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			doc.Published = t
		}

		docs = append(docs, doc)
	}
	return docs, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// landingURL returns the entry's alternate link, falling back to the
// entry ID (which is itself an abs URL).
func (e arxivEntry) landingURL() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	return strings.TrimSpace(e.ID)
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if isDigits(id[vIdx+1:]) {
			id = id[:vIdx]
		}
	}
	return id
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// collapseWhitespace joins runs of whitespace (arXiv wraps titles and
// abstracts with newlines and indentation).
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
