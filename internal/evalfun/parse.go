package evalfun

import (
	"strings"

	"github.com/daios-ai/liveeval/internal/pipeline"
	"github.com/daios-ai/liveeval/internal/token"
)

// ParseCells splits text into blank-line-delimited paragraphs and lexes
// each into a SourceBlock. It is pure and total: malformed cells still
// produce a SourceBlock (spec §7: "parseCells returns whatever SourceBlock
// sequence it chose, typically including blocks flagged as parse errors" —
// here, a cell with no lexemes renders as an empty block rather than being
// dropped, so indices stay aligned with line numbers).
func ParseCells(text string) []SourceBlock {
	p := pipeline.New(
		pipeline.StageFunc(splitParagraphs),
	)
	ctx := p.Run(&pipeline.Context{Text: text})

	blocks := make([]SourceBlock, 0, len(ctx.Paragraphs))
	lines := strings.Split(text, "\n")
	next := 0 // index of the first line of text not yet consumed
	for i, para := range ctx.Paragraphs {
		for next < len(lines) && strings.TrimSpace(lines[next]) == "" {
			next++ // skip the blank run before this paragraph
		}
		block := lexParagraph(i, next+1, para)
		blocks = append(blocks, block)
		next += strings.Count(para, "\n") + 1
	}
	return blocks
}

// splitParagraphs breaks ctx.Text on runs of blank lines, dropping
// leading/trailing blank runs, and records the non-blank paragraphs.
func splitParagraphs(ctx *pipeline.Context) *pipeline.Context {
	lines := strings.Split(ctx.Text, "\n")
	var cur []string
	var paras []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		cur = append(cur, l)
	}
	flush()
	ctx.Paragraphs = paras
	return ctx
}

func lexParagraph(blockID, startLine int, source string) SourceBlock {
	var lexemes []Lexeme
	lineNo := startLine
	col := 1
	for _, raw := range strings.Split(source, "\n") {
		col = 1
		for _, field := range strings.Fields(raw) {
			idx := strings.Index(raw[col-1:], field)
			if idx >= 0 {
				col += idx
			}
			lexemes = append(lexemes, Lexeme{Text: field, Pos: token.Position{Line: lineNo, Column: col}})
			col += len(field)
		}
		lineNo++
	}

	block := SourceBlock{
		Line:      startLine,
		BlockID:   blockID,
		Source:    source,
		Lexemes:   lexemes,
		Focus:     map[int]int{},
		Highlight: map[int][]Highlight{},
		Hover:     map[int]string{},
	}
	if len(lexemes) > 0 {
		block.Highlight[0] = []Highlight{{Kind: HighlightGroup, Span: Span{Start: 0, End: len(lexemes)}}}
		for i := 1; i < len(lexemes); i++ {
			block.Focus[i] = 0
		}
	}
	block.HTML = renderBlockHTML(block)
	return block
}
