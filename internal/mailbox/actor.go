package mailbox

import "sync"

// Behavior is the per-message handler an actor runs. self is the actor's
// own mailbox, handed back so the behavior can re-address itself (e.g. via
// SliceMailbox) when spawning helper goroutines that report back.
type Behavior[M any] func(self Mailbox[M], msg M)

// Handle is returned by LaunchActor: the inbox to send to, plus a Stop
// function to tear the actor down.
type Handle[M any] struct {
	Mailbox Mailbox[M]
	stop    func()
}

// Stop halts the actor's message loop. Queued messages are dropped and
// further sends are ignored. Idempotent.
func (h Handle[M]) Stop() {
	h.stop()
}

// LaunchActor spawns a goroutine running behavior against a fresh inbox
// and returns a handle to it. The actor processes its inbox serially: a
// behavior call never overlaps with another for the same actor, and a
// behavior must never block on another actor's state — only on work it
// owns (spec §4.1).
func LaunchActor[M any](behavior Behavior[M]) Handle[M] {
	ib := newInbox[M]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			m, ok := ib.recv()
			if !ok {
				return
			}
			behavior(ib, m)
		}
	}()
	var stopOnce sync.Once
	return Handle[M]{
		Mailbox: ib,
		stop: func() {
			stopOnce.Do(ib.close)
		},
	}
}
