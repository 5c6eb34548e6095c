package evalfun

import (
	"context"
	"testing"
)

func TestEvalAssignmentThenShow(t *testing.T) {
	ctx := context.Background()
	env := Env{}

	r1, env1 := Eval(ctx, env, SourceBlock{Line: 1, Source: "a = 1"})
	if r1.Err != nil {
		t.Fatalf("unexpected error: %v", r1.Err)
	}
	if env1["a"] != 1 {
		t.Fatalf("expected a=1, got %v", env1)
	}

	r2, _ := Eval(ctx, env1, SourceBlock{Line: 2, Source: "show(a)"})
	if r2.Err != nil {
		t.Fatalf("unexpected error: %v", r2.Err)
	}
	if r2.Text != "1" {
		t.Fatalf("expected show(a) to produce 1, got %q", r2.Text)
	}
}

func TestEvalUndefinedVariableIsCaughtNotReturned(t *testing.T) {
	r, env := Eval(context.Background(), Env{}, SourceBlock{Line: 1, Source: "show(missing)"})
	if r.Err == nil {
		t.Fatal("expected a captured diagnostic error")
	}
	if len(env) != 0 {
		t.Fatalf("env should be unchanged on error, got %v", env)
	}
}

func TestEvalDoesNotMutateParentEnv(t *testing.T) {
	base := Env{"a": 1}
	_, next := Eval(context.Background(), base, SourceBlock{Line: 1, Source: "a = 2"})
	if base["a"] != 1 {
		t.Fatalf("parent env must stay immutable, got %v", base)
	}
	if next["a"] != 2 {
		t.Fatalf("expected updated env to have a=2, got %v", next)
	}
}

func TestEvalSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _ := Eval(ctx, Env{}, SourceBlock{Line: 1, Source: "sleep 5000"})
	if r.Text != "cancelled" {
		t.Fatalf("expected cancelled result, got %+v", r)
	}
}
