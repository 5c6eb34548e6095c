// Package watcher implements the file watcher actor of spec §4.3: polls a
// path and emits Overwrite[string] updates through an incremental state
// server whose state is the file's current contents.
package watcher

import (
	"context"
	"crypto/sha256"
	"log"
	"os"
	"time"

	"github.com/daios-ai/liveeval/internal/incstate"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

func applyOverwrite(s string, u nodelist.Overwrite[string]) string {
	return nodelist.Apply(s, u)
}

// fingerprint is what two polls are compared by: mtime and size, plus a
// SHA-256 of the contents whenever the file could be read, so a change is
// seen even if mtime and size stay the same. A failed stat yields the zero
// fingerprint.
type fingerprint struct {
	modTime time.Time
	size    int64
	hash    [32]byte
	useHash bool
}

// Watcher polls Path every Interval and republishes its contents as an
// Overwrite[string] incremental state.
type Watcher struct {
	Path     string
	Interval time.Duration
	Logger   *log.Logger

	server *incstate.Server[string, nodelist.Overwrite[string]]
	last   fingerprint
}

// New constructs a Watcher and performs the initial read synchronously, so
// the returned Watcher's Server() already has the current contents as its
// state before Run is ever called.
func New(path string, interval time.Duration, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(os.Stderr, "[watcher] ", log.LstdFlags)
	}
	w := &Watcher{Path: path, Interval: interval, Logger: logger}
	contents, fp := w.read()
	w.last = fp
	w.server = incstate.NewServer[string, nodelist.Overwrite[string]](contents, applyOverwrite)
	return w
}

// Server returns the incremental state server subscribers attach to.
func (w *Watcher) Server() *incstate.Server[string, nodelist.Overwrite[string]] {
	return w.server
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	contents, fp := w.read()
	if fp == w.last {
		return
	}
	w.last = fp
	w.server.Update(nodelist.OverwriteWith(contents))
	w.server.FlushDiffs()
}

// read returns the file's contents, or "" on any read failure — spec §4.3:
// "On unreadable file: treat as empty string; do not crash."
func (w *Watcher) read() (string, fingerprint) {
	info, err := os.Stat(w.Path)
	if err != nil {
		w.Logger.Printf("stat %s: %v", w.Path, err)
		return "", fingerprint{}
	}

	data, err := os.ReadFile(w.Path)
	if err != nil {
		w.Logger.Printf("read %s: %v", w.Path, err)
		return "", fingerprint{modTime: info.ModTime(), size: info.Size()}
	}

	return string(data), fingerprint{
		modTime: info.ModTime(),
		size:    info.Size(),
		hash:    sha256.Sum256(data),
		useHash: true,
	}
}
