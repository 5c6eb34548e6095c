package evalfun

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daios-ai/liveeval/internal/diagnostics"
	"github.com/daios-ai/liveeval/internal/render"
	"github.com/daios-ai/liveeval/internal/token"
)

// Env threads variable bindings from one cell to the next. It is treated
// as immutable by Eval: every mutation happens on a fresh copy, so an
// Env captured in prevEnvs[k] by the DAG evaluator stays valid forever
// even as later cells run.
type Env map[string]int64

// CloneEnv returns an independent copy of e.
func CloneEnv(e Env) Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Result is the output of evaluating one cell: either a value (rendered
// as text and HTML) or a caught error — spec §7 requires evalFun to catch
// user-code failure itself and encode it in Result, never return a Go
// error, so the evaluator can treat every completion uniformly.
type Result struct {
	Text string
	HTML string
	Err  *diagnostics.DiagnosticError
}

func textResult(text string) Result {
	return Result{Text: text, HTML: render.Result(render.EscapeText(text))}
}

func errResult(err *diagnostics.DiagnosticError) Result {
	return Result{Err: err, HTML: render.Result(`<span class="error">` + render.EscapeText(err.Error()) + `</span>`)}
}

// Eval is the reference evalFun: a minimal calculator over int64
// variables. Each cell's Source is one of:
//
//	name = <int>        bind name, result echoes the assignment
//	show(name)          result is the bound value
//	sleep <ms>          interruptible pause, for exercising cancellation
//
// Anything else is an eval-time parse error captured in Result.Err rather
// than returned, per spec §7.
func Eval(ctx context.Context, env Env, block SourceBlock) (Result, Env) {
	src := strings.TrimSpace(block.Source)
	pos := token.Position{Line: block.Line, Column: 1}

	switch {
	case strings.HasPrefix(src, "sleep"):
		ms, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(src, "sleep")))
		if err != nil {
			return errResult(diagnostics.New(diagnostics.CodeEvalError, pos, "sleep: %v", err)), env
		}
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			return textResult(fmt.Sprintf("slept %dms", ms)), env
		case <-ctx.Done():
			return textResult("cancelled"), env
		}

	case strings.HasPrefix(src, "show(") && strings.HasSuffix(src, ")"):
		name := strings.TrimSuffix(strings.TrimPrefix(src, "show("), ")")
		v, ok := env[name]
		if !ok {
			return errResult(diagnostics.New(diagnostics.CodeEvalError, pos, "undefined variable %q", name)), env
		}
		return textResult(strconv.FormatInt(v, 10)), env

	default:
		name, rhs, ok := strings.Cut(src, "=")
		if !ok {
			return errResult(diagnostics.New(diagnostics.CodeParseError, pos, "unrecognized cell %q", src)), env
		}
		name = strings.TrimSpace(name)
		v, err := strconv.ParseInt(strings.TrimSpace(rhs), 10, 64)
		if err != nil {
			return errResult(diagnostics.New(diagnostics.CodeParseError, pos, "bad integer literal: %v", err)), env
		}
		next := CloneEnv(env)
		next[name] = v
		return textResult(fmt.Sprintf("%s = %d", name, v)), next
	}
}
