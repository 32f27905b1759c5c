// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

type fakeSource struct {
	results map[string][]types.Document
	limits  []int
	err     error
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Search(_ context.Context, phrase string, limit int) ([]types.Document, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[phrase], nil
}

func doc(id, title string) types.Document {
	return types.Document{Identifier: id, Title: title}
}

func TestRemoteRetrieveDeduplicates(t *testing.T) {
	source := &fakeSource{results: map[string][]types.Document{
		"graph embeddings": {doc("2401.00001", "A"), doc("2401.00002", "B")},
		"node2vec":         {doc("2401.00002", "B"), doc("2401.00003", "C")},
	}}
	r := NewRemoteRetriever(source, types.CorpusConfig{MaxPerPhrase: 10})

	got, err := r.Retrieve(context.Background(), []string{"graph embeddings", "node2vec"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	wantIDs := []string{"2401.00001", "2401.00002", "2401.00003"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d candidates, want %d", len(got), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got[i].Identifier != want {
			t.Errorf("candidate %d: got %q, want %q", i, got[i].Identifier, want)
		}
		if got[i].RetrievalScore != 0 {
			t.Errorf("candidate %d: retrieval score = %v, want neutral", i, got[i].RetrievalScore)
		}
	}
}

func TestRemoteRetrievePerPhraseLimit(t *testing.T) {
	source := &fakeSource{}
	r := NewRemoteRetriever(source, types.CorpusConfig{MaxPerPhrase: 7})

	if _, err := r.Retrieve(context.Background(), []string{"a phrase", "another"}); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(source.limits) != 2 {
		t.Fatalf("got %d searches, want 2", len(source.limits))
	}
	for i, limit := range source.limits {
		if limit != 7 {
			t.Errorf("search %d: limit = %d, want 7", i, limit)
		}
	}
}

func TestRemoteRetrieveSourceError(t *testing.T) {
	wantErr := errors.New("upstream down")
	r := NewRemoteRetriever(&fakeSource{err: wantErr}, types.CorpusConfig{})

	_, err := r.Retrieve(context.Background(), []string{"anything"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want wrapped %v", err, wantErr)
	}
}

func TestRemoteRetrieveEmptyResults(t *testing.T) {
	r := NewRemoteRetriever(&fakeSource{}, types.CorpusConfig{})

	got, err := r.Retrieve(context.Background(), []string{"no matches here"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d candidates, want none", len(got))
	}
}
