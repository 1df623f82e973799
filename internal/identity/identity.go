// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity resolves column-label aliases and folds employee names
// into stable join keys, so rosters extracted from independently produced
// PDFs can be matched on the same identity.
package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// Resolver maps known alternate column labels onto canonical ones.
type Resolver struct {
	canonical map[string]string
}

// NewResolver builds a Resolver from the schema's alias table. Canonical
// labels always resolve to themselves.
func NewResolver(schema types.SchemaConfig) *Resolver {
	canonical := make(map[string]string, len(schema.ColumnAliases)+3)
	for _, label := range []string{schema.DepartmentColumn, schema.IdentityColumn, schema.TitleColumn} {
		if label != "" {
			canonical[foldLabel(label)] = label
		}
	}
	for alias, canon := range schema.ColumnAliases {
		canonical[foldLabel(alias)] = canon
	}
	return &Resolver{canonical: canonical}
}

// CanonicalColumn returns the canonical label for a possibly aliased column
// label, or the trimmed input unchanged when no alias is known.
func (r *Resolver) CanonicalColumn(label string) string {
	if canon, ok := r.canonical[foldLabel(label)]; ok {
		return canon
	}
	return strings.TrimSpace(label)
}

// foldLabel normalizes a column label for alias lookup: trimmed, NFKC-folded,
// lowercased.
func foldLabel(label string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(label)))
}

// FoldName folds an employee name into a join key. The same person often
// appears as "佐藤　太郎" in one PDF and "佐藤 太郎" (or a half-width variant)
// in the next, depending on how the table was typeset. Folding trims the
// name, applies Unicode width folding and NFKC normalization, and collapses
// internal whitespace runs (including U+3000) to a single space.
func FoldName(name string) string {
	folded := norm.NFKC.String(width.Fold.String(strings.TrimSpace(name)))
	return strings.Join(strings.Fields(folded), " ")
}
