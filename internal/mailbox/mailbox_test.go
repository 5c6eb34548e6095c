package mailbox

import (
	"testing"
	"time"
)

func TestLaunchActorOrderingPerSender(t *testing.T) {
	results := make(chan int, 10)
	h := LaunchActor(func(self Mailbox[int], msg int) {
		results <- msg
	})
	for i := 0; i < 5; i++ {
		h.Mailbox.Send(i)
	}
	for i := 0; i < 5; i++ {
		select {
		case got := <-results:
			if got != i {
				t.Fatalf("expected %d in order, got %d", i, got)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}
	h.Stop()
}

type outer struct {
	kind string
	n    int
}

func TestSliceMailboxLiftsMessages(t *testing.T) {
	seen := make(chan outer, 1)
	h := LaunchActor(func(self Mailbox[outer], msg outer) {
		seen <- msg
	})
	inner := SliceMailbox(func(n int) outer { return outer{kind: "inner", n: n} }, h.Mailbox)
	inner.Send(42)

	select {
	case got := <-seen:
		if got.kind != "inner" || got.n != 42 {
			t.Fatalf("unexpected lifted message: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	h.Stop()
}

func TestStopDropsFurtherMessages(t *testing.T) {
	processed := make(chan int, 10)
	h := LaunchActor(func(self Mailbox[int], msg int) {
		processed <- msg
	})
	h.Stop()
	h.Stop() // idempotent
	h.Mailbox.Send(1)
	select {
	case <-processed:
		t.Fatal("expected no message to be processed after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}
