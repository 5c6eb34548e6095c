// Package token defines the source-position type shared by the cell
// parser, the reference evalFun, and diagnostics.
package token

import "fmt"

// Position is a 1-based line/column location in a source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Less reports whether p sorts before q in reading order.
func (p Position) Less(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}
