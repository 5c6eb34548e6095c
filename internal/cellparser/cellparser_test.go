package cellparser

import (
	"strings"
	"testing"
	"time"

	"github.com/daios-ai/liveeval/internal/incstate"
	"github.com/daios-ai/liveeval/internal/mailbox"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

func applyOverwrite(s string, u nodelist.Overwrite[string]) string {
	return nodelist.Apply(s, u)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func strEq(a, b string) bool { return a == b }

type recordingMailbox[U any] struct {
	ch chan U
}

func (r recordingMailbox[U]) Send(u U) { r.ch <- u }

func TestFreshFileThreeCells(t *testing.T) {
	ws := incstate.NewServer[string, nodelist.Overwrite[string]]("a\nb\nc", applyOverwrite)
	h := cellparserLaunch(t, ws)
	defer h.Stop()

	nl := h.Server.State()
	if nl.Len() != 3 {
		t.Fatalf("expected 3 cells, got %d", nl.Len())
	}
	vals := nl.Values()
	if vals[0] != "a" || vals[1] != "b" || vals[2] != "c" {
		t.Fatalf("unexpected cell values: %v", vals)
	}
}

func TestAppendOnlyEditDiff(t *testing.T) {
	ws := incstate.NewServer[string, nodelist.Overwrite[string]]("a\nb\nc", applyOverwrite)
	h := cellparserLaunch(t, ws)
	defer h.Stop()

	mb := recordingMailbox[nodelist.NodeListUpdate[string]]{ch: make(chan nodelist.NodeListUpdate[string], 4)}
	h.Server.Subscribe(mailbox.Mailbox[nodelist.NodeListUpdate[string]](mb))

	ws.Update(nodelist.OverwriteWith("a\nb\nc\nd"))
	ws.FlushDiffs()

	diff := waitForDiff(t, mb.ch)
	if diff.Tail.NumDropped != 0 {
		t.Fatalf("expected append-only diff to drop nothing, got %d", diff.Tail.NumDropped)
	}
	if len(diff.Tail.NewTail) != 1 {
		t.Fatalf("expected exactly one new id, got %+v", diff)
	}
	if h.Server.State().Len() != 4 {
		t.Fatalf("expected 4 cells after append, got %d", h.Server.State().Len())
	}
}

func TestEditInvalidatesMiddleDiff(t *testing.T) {
	ws := incstate.NewServer[string, nodelist.Overwrite[string]]("a\nb\nc", applyOverwrite)
	h := cellparserLaunch(t, ws)
	defer h.Stop()

	oldIds := append([]nodelist.NodeId{}, h.Server.State().Ordered()...)

	mb := recordingMailbox[nodelist.NodeListUpdate[string]]{ch: make(chan nodelist.NodeListUpdate[string], 4)}
	h.Server.Subscribe(mailbox.Mailbox[nodelist.NodeListUpdate[string]](mb))

	ws.Update(nodelist.OverwriteWith("a\nB\nc"))
	ws.FlushDiffs()

	diff := waitForDiff(t, mb.ch)
	if diff.Tail.NumDropped != 2 || len(diff.Tail.NewTail) != 2 {
		t.Fatalf("expected 2 dropped / 2 created, got %+v", diff)
	}
	for _, id := range oldIds[1:] {
		if elt, ok := diff.Map[id]; !ok || elt.Tag != nodelist.EltDelete {
			t.Fatalf("expected delete for old id %v", id)
		}
	}
	if h.Server.State().Ordered()[0] != oldIds[0] {
		t.Fatal("expected prefix id to survive the edit")
	}
}

func TestEmptyFileProducesEmptyCellList(t *testing.T) {
	ws := incstate.NewServer[string, nodelist.Overwrite[string]]("", applyOverwrite)
	h := cellparserLaunch(t, ws)
	defer h.Stop()
	if h.Server.State().Len() != 0 {
		t.Fatalf("expected empty cell list, got %d", h.Server.State().Len())
	}
}

func cellparserLaunch(t *testing.T, ws *incstate.Server[string, nodelist.Overwrite[string]]) Handle[string] {
	t.Helper()
	h := Launch[string](ws, splitLines, strEq, nil)
	// Launch's init message is processed asynchronously; give the actor a
	// moment to run before assertions on initial state.
	deadline := time.Now().Add(time.Second)
	for h.Server.State().Len() == 0 && time.Now().Before(deadline) {
		if ws.State() == "" {
			break
		}
		time.Sleep(time.Millisecond)
	}
	return h
}

func waitForDiff[U any](t *testing.T, ch chan U) U {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for diff")
		var zero U
		return zero
	}
}
