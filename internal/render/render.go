// Package render turns lexeme/highlight data into presentation HTML. It
// purposely knows nothing about SourceBlock or Result — spec.md §1 treats
// HTML/JSON rendering as "purely a presentation concern over the data
// model", so this package takes plain strings/spans and leaves the
// data-model types (internal/evalfun) to call it, not the other way
// around.
package render

import (
	"html"
	"strconv"
	"strings"
)

// EscapeText HTML-escapes s for safe inclusion in a text node.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

// Lexemes renders a flat list of lexeme texts as a sequence of
// <span class="lexeme"> elements separated by a single space.
func Lexemes(texts []string) string {
	spans := make([]string, len(texts))
	for i, t := range texts {
		spans[i] = `<span class="lexeme">` + EscapeText(t) + `</span>`
	}
	return strings.Join(spans, " ")
}

// HighlightClass returns the CSS class for a highlight kind tag, where
// isGroup distinguishes HighlightGroup from HighlightLeaf without this
// package needing evalfun's HighlightKind type.
func HighlightClass(isGroup bool) string {
	if isGroup {
		return "hl-group"
	}
	return "hl-leaf"
}

// Block wraps already-rendered lexeme HTML in a block container, tagging
// it with a stable DOM id derived from blockID so a client-side renderer
// can patch a single block in place rather than re-rendering the page.
func Block(blockID int, innerHTML string) string {
	return `<div class="cell" data-block-id="` + strconv.Itoa(blockID) + `">` + innerHTML + `</div>`
}

// Result wraps a result's rendered body the same way, for the
// Complete(Result) status payload.
func Result(body string) string {
	return `<div class="result">` + body + `</div>`
}
