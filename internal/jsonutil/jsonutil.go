// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonutil extracts JSON objects from loosely structured model
// output. Generative AI replies are not guaranteed to be clean JSON: the
// object may be wrapped in prose or a code fence. UnmarshalObject tries a
// strict decode first, then falls back to the substring between the first
// '{' and the last '}'.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalObject decodes a JSON object from raw into v. It returns an
// error only when neither the full text nor the brace-delimited substring
// parses as JSON.
func UnmarshalObject(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("empty response text")
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	inner, ok := braceWindow(trimmed)
	if !ok {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(inner), v); err != nil {
		return fmt.Errorf("parsing extracted JSON object: %w", err)
	}
	return nil
}

// braceWindow returns the substring spanning the first '{' through the
// last '}', or ok=false when no such window exists.
func braceWindow(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
