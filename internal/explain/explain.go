// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package explain produces a short plain-text justification for why a
// ranked document is relevant to the research query.
package explain

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/discovery-engine/internal/llm"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

const explanationSystem = `You are a research assistant. Given a research query and a paper,
explain in two or three sentences why the paper is relevant to the query.
Be concrete about the connection. Respond with plain text only.`

var explanationPromptTmpl = template.Must(template.New("explanation").Parse(
	`Research query: {{.Query}}

Paper title: {{.Title}}
Paper abstract: {{.Summary}}

Why is this paper relevant to the query?`))

// Explainer generates per-document justifications through an LLM.
type Explainer struct {
	Client llm.Client
}

// Explain returns a justification for the document's relevance to the
// query. An unreachable model or an empty reply is an error; the caller
// decides whether that aborts the run.
func (e *Explainer) Explain(ctx context.Context, query string, doc types.Document) (string, error) {
	var prompt strings.Builder
	err := explanationPromptTmpl.Execute(&prompt, struct {
		Query, Title, Summary string
	}{query, doc.Title, doc.Summary})
	if err != nil {
		return "", fmt.Errorf("rendering explanation prompt: %w", err)
	}

	reply, err := e.Client.Complete(ctx, llm.Request{
		System: explanationSystem,
		Prompt: prompt.String(),
	})
	if err != nil {
		return "", fmt.Errorf("explaining %s: %w", doc.Identifier, err)
	}

	justification := strings.TrimSpace(reply)
	if justification == "" {
		return "", fmt.Errorf("explaining %s: model returned an empty justification", doc.Identifier)
	}
	return justification, nil
}
