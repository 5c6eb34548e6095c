// Package evalfun is the reference implementation of the two pluggable
// collaborators spec.md §6 leaves external: parseCells (Text -> []I) and
// evalFun ((Env, I) -> (Result, Env)). Nothing in internal/dageval or
// internal/cellparser imports this package's concrete types directly —
// they are generic over I and O — but cmd/liveeval wires this
// implementation in as the default.
package evalfun

import "github.com/daios-ai/liveeval/internal/token"

// HighlightKind distinguishes a highlight span that contains further
// nested highlights (HighlightGroup) from a leaf span (HighlightLeaf).
type HighlightKind int

const (
	HighlightGroup HighlightKind = iota
	HighlightLeaf
)

// Span is a half-open range over a SourceBlock's Lexemes.
type Span struct {
	Start int
	End   int
}

// Highlight is one entry of a SourceBlock's highlight map value.
type Highlight struct {
	Kind HighlightKind
	Span Span
}

// Lexeme is one token of a cell's source text.
type Lexeme struct {
	Text string
	Pos  token.Position
}

// SourceBlock is the parsed form of one cell. Two SourceBlocks compare
// equal (via Equal) iff they were parsed from the same source text at the
// same line — which is exactly the notion of "unchanged" the linear
// prefix-diffing algorithm in internal/cellparser needs.
type SourceBlock struct {
	Line      int
	BlockID   int
	Source    string
	Lexemes   []Lexeme
	Focus     map[int]int         // child lexeme index -> parent lexeme index
	Highlight map[int][]Highlight // parent lexeme index -> highlights rooted there
	Hover     map[int]string      // lexeme index -> hover text
	HTML      string
}

// Equal implements the decidable equality on SourceBlock that
// internal/cellparser needs for prefix diffing. Source+Line fully
// determines every other field (they are pure functions of the two), so
// comparing them is sufficient and avoids a deep structural comparison on
// every re-parse.
func Equal(a, b SourceBlock) bool {
	return a.Line == b.Line && a.Source == b.Source
}
