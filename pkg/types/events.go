// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EventType tags a progress event. Exactly one payload field of Event is
// populated for each type.
type EventType string

const (
	EventStatus      EventType = "status"
	EventExpansion   EventType = "expansion"
	EventRetrieval   EventType = "retrieval"
	EventRanking     EventType = "ranking"
	EventExplanation EventType = "explanation"
	EventResults     EventType = "results"
	EventError       EventType = "error"
)

// Stage identifies the pipeline stage an event belongs to.
type Stage string

const (
	StageExpand   Stage = "expand"
	StageRetrieve Stage = "retrieve"
	StageRank     Stage = "rank"
	StageExplain  Stage = "explain"
)

// CandidateSummary is the abbreviated document view carried in
// retrieval events, so the client can show progress without the full
// record.
type CandidateSummary struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
}

// RankEntry pairs a document identifier with its rerank score.
type RankEntry struct {
	Identifier string  `json:"identifier"`
	Score      float64 `json:"score"`
}

// ExpansionPayload carries the search phrases produced by query expansion.
type ExpansionPayload struct {
	Expansions []string `json:"expansions"`
}

// RetrievalPayload carries the deduplicated candidate set.
type RetrievalPayload struct {
	Count      int                `json:"count"`
	Candidates []CandidateSummary `json:"candidates"`
}

// RankingPayload carries the reranked ordering.
type RankingPayload struct {
	Ranked []RankEntry `json:"ranked"`
}

// ExplanationPayload carries one candidate's justification.
type ExplanationPayload struct {
	Identifier    string `json:"identifier"`
	Justification string `json:"justification"`
}

// ResultsPayload carries the final ordered, explained result list.
type ResultsPayload struct {
	Results []RankedResult `json:"results"`
}

// Event is one unit of the streamed progress sequence. Events are created
// by the orchestrator as stages complete or fail, serialized immediately
// by the transport, and never retained. The zero-value payload pointers
// stay nil for event types that do not use them.
type Event struct {
	Type    EventType `json:"type"`
	Stage   Stage     `json:"stage,omitempty"`
	Message string    `json:"message,omitempty"`

	Expansion   *ExpansionPayload   `json:"expansion,omitempty"`
	Retrieval   *RetrievalPayload   `json:"retrieval,omitempty"`
	Ranking     *RankingPayload     `json:"ranking,omitempty"`
	Explanation *ExplanationPayload `json:"explanation,omitempty"`
	Results     *ResultsPayload     `json:"results,omitempty"`
}
