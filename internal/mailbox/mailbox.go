// Package mailbox implements the single-threaded actor runtime of the
// live-eval core (spec §4.1): a typed inbox per actor, FIFO per sender,
// reliable in-process delivery, and narrowing/lifting combinators so one
// actor's inbox can be addressed as several message sub-variants.
package mailbox

// Mailbox is the send-only handle to an actor's inbox. It is safe to hold
// and call Send from any number of goroutines.
type Mailbox[M any] interface {
	Send(m M)
}

// SliceMailbox narrows mb to a sub-variant of its message type: sends to
// the returned Mailbox[N] are lifted through tag and forwarded to mb. This
// is how a worker thread or a sub-component addresses the owning actor's
// inbox without knowing its full message sum type.
func SliceMailbox[M, N any](tag func(N) M, mb Mailbox[M]) Mailbox[N] {
	return taggedMailbox[M, N]{tag: tag, inner: mb}
}

type taggedMailbox[M, N any] struct {
	tag   func(N) M
	inner Mailbox[M]
}

func (t taggedMailbox[M, N]) Send(n N) {
	t.inner.Send(t.tag(n))
}
