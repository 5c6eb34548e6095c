package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daios-ai/liveeval/internal/mailbox"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

type chanMailbox struct {
	ch chan nodelist.Overwrite[string]
}

func (c chanMailbox) Send(u nodelist.Overwrite[string]) { c.ch <- u }

func TestWatcherInitialSnapshotIsFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.live")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := New(path, 10*time.Millisecond, nil)
	if got := w.Server().State(); got != "hello" {
		t.Fatalf("expected initial state %q, got %q", "hello", got)
	}
}

func TestWatcherEmitsOverwriteOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.live")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := New(path, 10*time.Millisecond, nil)

	mb := chanMailbox{ch: make(chan nodelist.Overwrite[string], 4)}
	w.Server().Subscribe(mailbox.Mailbox[nodelist.Overwrite[string]](mb))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(15 * time.Millisecond)
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-mb.ch:
		v, ok := u.Value()
		if !ok || v != "v2" {
			t.Fatalf("expected overwrite to v2, got %v ok=%v", v, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher update")
	}
}

func TestWatcherUnreadableFileIsEmptyNotCrash(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "does-not-exist.live"), 10*time.Millisecond, nil)
	if got := w.Server().State(); got != "" {
		t.Fatalf("expected empty state for unreadable file, got %q", got)
	}
}
