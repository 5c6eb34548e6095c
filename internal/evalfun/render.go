package evalfun

import "github.com/daios-ai/liveeval/internal/render"

func renderBlockHTML(b SourceBlock) string {
	texts := make([]string, len(b.Lexemes))
	for i, l := range b.Lexemes {
		texts[i] = l.Text
	}
	return render.Block(b.BlockID, render.Lexemes(texts))
}
