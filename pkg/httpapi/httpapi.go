// Package httpapi is the net/http front door onto a running dageval
// evaluator (spec.md §6 "to the hosting environment"): GET /snapshot
// returns the current NodeList as JSON, GET /subscribe streams one
// newline-delimited JSON frame per flushDiffs. An optional gRPC
// LiveEvalService offers the same stream to non-browser subscribers.
package httpapi

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"google.golang.org/grpc"

	"github.com/daios-ai/liveeval/internal/dageval"
	"github.com/daios-ai/liveeval/internal/mailbox"
	"github.com/daios-ai/liveeval/internal/nodelist"
	"github.com/daios-ai/liveeval/internal/wire"
)

// Server wires one dageval evaluator's outward state to HTTP and, through
// ServeGRPC, gRPC.
type Server[I, O, S any] struct {
	eval   dageval.Handle[I, O, S]
	logger *log.Logger
}

// New returns a Server fronting eval.
func New[I, O, S any](eval dageval.Handle[I, O, S], logger *log.Logger) *Server[I, O, S] {
	if logger == nil {
		logger = log.New(os.Stderr, "[httpapi] ", log.LstdFlags)
	}
	return &Server[I, O, S]{eval: eval, logger: logger}
}

// chanMailbox adapts a buffered Go channel to mailbox.Mailbox so an HTTP
// handler goroutine can subscribe to the evaluator's diff stream without
// the evaluator actor ever blocking on a slow client (spec.md §4.1: an
// actor must never block on another actor's state; the buffer absorbs a
// burst). A diff is not independently applicable — a later Update/Delete
// entry presumes an earlier Create already landed — so a full buffer never
// drops a queued diff outright: it composes the backlog down to one entry
// via NodeListUpdate.Compose instead, preserving delivery order and
// honoring spec.md §4.1/§4.2's no-drop guarantee even for a slow
// subscriber.
type chanMailbox[A any] struct {
	mu sync.Mutex
	ch chan nodelist.NodeListUpdate[A]
}

func newChanMailbox[A any](buf int) *chanMailbox[A] {
	return &chanMailbox[A]{ch: make(chan nodelist.NodeListUpdate[A], buf)}
}

func (m *chanMailbox[A]) Send(u nodelist.NodeListUpdate[A]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case m.ch <- u:
		return
	default:
	}

	var composed nodelist.NodeListUpdate[A]
	haveBacklog := false
drain:
	for {
		select {
		case old := <-m.ch:
			if haveBacklog {
				composed = composed.Compose(old)
			} else {
				composed = old
				haveBacklog = true
			}
		default:
			break drain
		}
	}
	if haveBacklog {
		composed = composed.Compose(u)
	} else {
		composed = u
	}
	m.ch <- composed
}

func (s *Server[I, O, S]) subscribe(mb *chanMailbox[dageval.NodeState[I, O]]) (*nodelist.NodeList[dageval.NodeState[I, O]], func()) {
	snapshot := s.eval.Server.Subscribe(mailbox.Mailbox[nodelist.NodeListUpdate[dageval.NodeState[I, O]]](mb))
	return snapshot, func() {}
}

func (s *Server[I, O, S]) encodeSnapshot(nl *nodelist.NodeList[dageval.NodeState[I, O]]) ([]byte, error) {
	return wire.EncodeSnapshot(nl)
}

func (s *Server[I, O, S]) encodeDiff(u nodelist.NodeListUpdate[dageval.NodeState[I, O]]) ([]byte, error) {
	return wire.EncodeUpdate(u)
}

// Handler returns the net/http mux: GET /snapshot, GET /subscribe.
func (s *Server[I, O, S]) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/subscribe", s.handleSubscribe)
	return mux
}

func (s *Server[I, O, S]) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	nl := s.eval.Server.State()
	payload, err := s.encodeSnapshot(nl)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// handleSubscribe streams one initial snapshot frame followed by one
// NDJSON frame per flushDiffs, over a chunked response — grounded in how
// cmd/lsp/server.go frames JSON-RPC messages over a single persistent
// stream, adapted here to an http.Flusher-driven chunked body since no
// websocket library appears anywhere in the example pack.
func (s *Server[I, O, S]) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	mb := newChanMailbox[dageval.NodeState[I, O]](64)
	snapshot, unsubscribe := s.subscribe(mb)
	defer unsubscribe()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	if payload, err := s.encodeSnapshot(snapshot); err == nil {
		w.Write(payload)
		w.Write([]byte("\n"))
		flusher.Flush()
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case diff, ok := <-mb.ch:
			if !ok {
				return
			}
			payload, err := s.encodeDiff(diff)
			if err != nil {
				s.logger.Printf("encoding diff: %v", err)
				continue
			}
			w.Write(payload)
			w.Write([]byte("\n"))
			flusher.Flush()
		}
	}
}

// ServeGRPC runs a gRPC server exposing LiveEvalService.Subscribe on lis
// until ctx is cancelled.
func (s *Server[I, O, S]) ServeGRPC(ctx context.Context, lis net.Listener) error {
	gs := grpc.NewServer()
	gs.RegisterService(func() *grpc.ServiceDesc { d := s.grpcServiceDesc(); return &d }(), s)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()

	select {
	case <-ctx.Done():
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
