package incstate

import (
	"sync"

	"github.com/daios-ai/liveeval/internal/mailbox"
)

// ApplyDiff applies an update to a state, producing the resulting state.
// Must satisfy: ApplyDiff(s, zero) == s, and
// ApplyDiff(s, u1.Compose(u2)) == ApplyDiff(ApplyDiff(s, u1), u2).
type ApplyDiff[S any, U any] func(s S, u U) S

// Server holds a state value and serves it, plus all future diffs, to any
// number of subscribers. Updates are buffered by Update and only committed
// and broadcast by an explicit FlushDiffs call, so a multi-step reaction
// (several Updates) is observed by subscribers as one atomic batch.
//
// Update and FlushDiffs are called only by the single actor that owns the
// Server, so one reaction's batch is never interleaved with another's.
// Subscribe and State are called from other goroutines too (downstream
// actors subscribing, HTTP handlers, polling callers); the mutex serializes
// those calls with the owner's.
type Server[S any, U Monoid[U]] struct {
	mu          sync.Mutex
	state       S
	pending     U
	subscribers []mailbox.Mailbox[U]
	applyDiff   ApplyDiff[S, U]
}

// NewServer constructs a Server seeded with initial and the given apply law.
func NewServer[S any, U Monoid[U]](initial S, applyDiff ApplyDiff[S, U]) *Server[S, U] {
	return &Server[S, U]{state: initial, applyDiff: applyDiff}
}

// Subscribe atomically returns the current state and registers sub to
// receive every future FlushDiffs broadcast. No diff is lost between the
// returned snapshot and the first delivered update.
func (s *Server[S, U]) Subscribe(sub mailbox.Mailbox[U]) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
	return s.state
}

// Update buffers u into the pending accumulator: pending = pending <> u.
// It does not broadcast; call FlushDiffs once a coherent batch of Updates
// is complete.
func (s *Server[S, U]) Update(u U) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = s.pending.Compose(u)
}

// FlushDiffs applies the pending update to the state, broadcasts it to
// every subscriber, and resets pending to the identity.
func (s *Server[S, U]) FlushDiffs() {
	s.mu.Lock()
	pending := s.pending
	var zero U
	s.pending = zero
	s.state = s.applyDiff(s.state, pending)
	subs := append([]mailbox.Mailbox[U]{}, s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Send(pending)
	}
}

// State returns the current committed state without subscribing.
func (s *Server[S, U]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Projected returns what State would become if FlushDiffs were called
// right now, without actually committing or broadcasting anything. The
// owning actor uses this mid-reaction, when it needs to act on the
// not-yet-flushed effect of updates it has already buffered this turn
// (e.g. deciding which cell to evaluate next right after lifting the
// parser's diff, before the batch's FlushDiffs call).
func (s *Server[S, U]) Projected() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyDiff(s.state, s.pending)
}
