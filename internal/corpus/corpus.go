// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus provides read-only access to candidate documents. Two
// sources exist: the remote arXiv search API, queried per phrase, and a
// local SQLite snapshot loaded into memory at process start.
package corpus

import (
	"context"

	"github.com/pdiddy/discovery-engine/pkg/types"
)

// Source looks up candidate documents for one search phrase. Each source
// (arXiv, local snapshot) implements this interface per the Strategy
// pattern.
type Source interface {
	Name() string
	Search(ctx context.Context, phrase string, limit int) ([]types.Document, error)
}
