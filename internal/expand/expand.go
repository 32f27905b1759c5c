// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand turns one research query into several alternative search
// phrases via a generative-AI call.
package expand

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/discovery-engine/internal/jsonutil"
	"github.com/pdiddy/discovery-engine/internal/llm"
)

// expansionSystem frames the model as a literature-search assistant.
const expansionSystem = "You are a research assistant helping a user search an academic paper corpus."

// expansionPromptTmpl is the prompt template for the expansion call. It
// asks for alternative phrasings covering synonyms and adjacent
// terminology, as a JSON object.
var expansionPromptTmpl = template.Must(template.New("expansion").Parse(`Generate 3 to 5 alternative phrasings or related keyword sets that would be
useful when searching for papers about the following description. Cover
synonyms and adjacent terminology. Respond with a JSON object with an
"expansions" field containing the list of strings. Do not include any text
outside the JSON object.

Description: {{.Query}}
`))

// expansionReply is the expected shape of the model's JSON reply.
type expansionReply struct {
	Expansions []string `json:"expansions"`
}

// Expander produces search-phrase expansions for a query.
type Expander struct {
	Client llm.Client
}

// Expand calls the language model and returns the distinct search phrases
// for the query, always including the original query itself. An unparsable
// or empty reply degrades to just the original query; only a failed API
// call is an error.
func (e *Expander) Expand(ctx context.Context, query string) ([]string, error) {
	prompt, err := renderPrompt(query)
	if err != nil {
		return nil, fmt.Errorf("rendering expansion prompt: %w", err)
	}

	reply, err := e.Client.Complete(ctx, llm.Request{
		System:     expansionSystem,
		Prompt:     prompt,
		JSONObject: true,
	})
	if err != nil {
		return nil, fmt.Errorf("expanding query: %w", err)
	}

	var parsed expansionReply
	if err := jsonutil.UnmarshalObject(reply, &parsed); err != nil {
		// Recoverable degradation: search with the original query alone.
		return []string{query}, nil
	}

	return mergePhrases(query, parsed.Expansions), nil
}

// mergePhrases returns the original query followed by the distinct,
// non-empty expansion phrases. Comparison is case-insensitive so the
// model restating the query does not produce a duplicate lookup.
func mergePhrases(query string, expansions []string) []string {
	phrases := []string{query}
	seen := map[string]bool{normalizePhrase(query): true}

	for _, raw := range expansions {
		phrase := strings.TrimSpace(raw)
		if phrase == "" {
			continue
		}
		key := normalizePhrase(phrase)
		if seen[key] {
			continue
		}
		seen[key] = true
		phrases = append(phrases, phrase)
	}

	return phrases
}

func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func renderPrompt(query string) (string, error) {
	var buf bytes.Buffer
	if err := expansionPromptTmpl.Execute(&buf, struct{ Query string }{Query: query}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
