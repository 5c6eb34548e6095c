// Package pipeline is a tiny sequential-stage runner used by the reference
// parseCells implementation to turn raw source text into cell boundaries
// in a few explicit, independently testable steps.
package pipeline

import "github.com/daios-ai/liveeval/internal/diagnostics"

// Context carries the text under construction plus diagnostics
// accumulated by earlier stages. Stages never abort the pipeline on
// error — a later stage may still be able to make progress, and the
// caller wants every diagnostic from one parse, not just the first.
type Context struct {
	Text        string
	Paragraphs  []string
	Diagnostics []*diagnostics.DiagnosticError
}

// Stage transforms a Context.
type Stage interface {
	Process(ctx *Context) *Context
}

// StageFunc adapts a plain function to Stage.
type StageFunc func(ctx *Context) *Context

func (f StageFunc) Process(ctx *Context) *Context { return f(ctx) }

// Pipeline runs a fixed sequence of stages.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run feeds initial through every stage in order and returns the final
// Context.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
	}
	return ctx
}
