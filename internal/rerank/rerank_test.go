// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(types.RerankConfig{
		BaseURL: srv.URL,
		Model:   "rerank-v3.5",
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func candidates(titles ...string) []types.ScoredDocument {
	docs := make([]types.ScoredDocument, len(titles))
	for i, title := range titles {
		docs[i] = types.ScoredDocument{Document: types.Document{
			Identifier: title,
			Title:      title,
		}}
	}
	return docs
}

func TestRerankRequestShape(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rerank" {
			t.Errorf("path = %q, want /v1/rerank", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Write([]byte(`{"results":[{"index":0,"relevance_score":0.9}]}`))
	})

	_, err := client.Rerank(context.Background(), "graphs", candidates("A", "B"), 3)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}

	if got["model"] != "rerank-v3.5" {
		t.Errorf("model = %v", got["model"])
	}
	if got["query"] != "graphs" {
		t.Errorf("query = %v", got["query"])
	}
	docs, ok := got["documents"].([]any)
	if !ok || len(docs) != 2 {
		t.Fatalf("documents = %v, want 2 entries", got["documents"])
	}
}

func TestRerankOrdersAndTruncates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[
			{"index":0,"relevance_score":0.2},
			{"index":1,"relevance_score":0.9},
			{"index":2,"relevance_score":0.5}
		]}`))
	})

	got, err := client.Rerank(context.Background(), "q", candidates("A", "B", "C"), 2)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Identifier != "B" || got[1].Identifier != "C" {
		t.Errorf("order = [%s %s], want [B C]", got[0].Identifier, got[1].Identifier)
	}
	if got[0].RerankScore != 0.9 {
		t.Errorf("top score = %v, want 0.9", got[0].RerankScore)
	}
}

func TestRerankDropsAndZeroesMalformedEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[
			{"index":5,"relevance_score":0.9},
			{"index":"nope","relevance_score":0.8},
			{"index":1,"relevance_score":"bad"},
			{"index":0,"relevance_score":0.7}
		]}`))
	})

	got, err := client.Rerank(context.Background(), "q", candidates("A", "B"), 10)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	// The entry with the unparsable score stays, at zero.
	if got[0].Identifier != "A" || got[0].RerankScore != 0.7 {
		t.Errorf("first = %s (%v), want A (0.7)", got[0].Identifier, got[0].RerankScore)
	}
	if got[1].Identifier != "B" || got[1].RerankScore != 0 {
		t.Errorf("second = %s (%v), want B (0)", got[1].Identifier, got[1].RerankScore)
	}
}

func TestRerankErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantIn  string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
			},
			wantIn: "429",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("<html>maintenance</html>"))
			},
			wantIn: "decoding",
		},
		{
			name: "no usable results",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"results":[{"index":99,"relevance_score":0.5}]}`))
			},
			wantIn: "no usable results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)
			_, err := client.Rerank(context.Background(), "q", candidates("A"), 1)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error = %q, want substring %q", err, tt.wantIn)
			}
		})
	}
}

func TestRerankTruncatesOnRuneBoundary(t *testing.T) {
	var docs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Documents []string `json:"documents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		docs = req.Documents
		w.Write([]byte(`{"results":[{"index":0,"relevance_score":0.5}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(types.RerankConfig{
		BaseURL:            srv.URL,
		APIKey:             "test-key",
		DocumentCharBudget: 5,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	// "ééé" is six bytes; a five-byte cut lands mid-rune.
	input := []types.ScoredDocument{{Document: types.Document{
		Identifier: "d1",
		Title:      "ééé",
	}}}
	if _, err := client.Rerank(context.Background(), "q", input, 1); err != nil {
		t.Fatalf("Rerank: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0] != "éé" {
		t.Errorf("document text = %q, want %q", docs[0], "éé")
	}
	if !utf8.ValidString(docs[0]) {
		t.Errorf("document text %q is not valid UTF-8", docs[0])
	}
}

func TestRerankEmptyCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty candidates")
	})

	got, err := client.Rerank(context.Background(), "q", nil, 3)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(types.RerankConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
