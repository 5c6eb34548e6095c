// Command liveeval watches a source file, incrementally re-evaluates its
// cells, and serves the resulting status stream (spec.md §6). Subcommands
// are dispatched by hand on os.Args[1], in the style of cmd/funxy/main.go.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/daios-ai/liveeval/internal/cellparser"
	"github.com/daios-ai/liveeval/internal/config"
	"github.com/daios-ai/liveeval/internal/dageval"
	"github.com/daios-ai/liveeval/internal/evalfun"
	"github.com/daios-ai/liveeval/internal/nodelist"
	"github.com/daios-ai/liveeval/internal/watcher"
	"github.com/daios-ai/liveeval/internal/wire"
	"github.com/daios-ai/liveeval/pkg/httpapi"
	"github.com/daios-ai/liveeval/pkg/liveevalpb"
)

// cellUpdate is the concrete update type flowing out of the reference
// evalfun pipeline: a diff over NodeState[SourceBlock, Result].
type cellUpdate = nodelist.NodeListUpdate[dageval.NodeState[evalfun.SourceBlock, evalfun.Result]]

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "watch":
		runWatch(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "describe":
		runDescribe()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "liveeval: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  liveeval watch <path>              watch and print cell status to stdout
  liveeval serve <path> [-addr addr]  watch and serve /snapshot, /subscribe
  liveeval export <path>             wait for evaluation to settle and write
                                      a binary snapshot to stdout
  liveeval describe                  print the LiveEvalService wire schema`)
}

// rootContext cancels on SIGINT/SIGTERM, mirroring cmd/funxy's shutdown
// handling.
func rootContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx, cancel
}

func launchPipeline(ctx context.Context, path string, cfg config.Resolved, logger *log.Logger) dageval.Handle[evalfun.SourceBlock, evalfun.Result, evalfun.Env] {
	w := watcher.New(path, cfg.PollInterval, logger)
	go w.Run(ctx)

	parser := cellparser.Launch[evalfun.SourceBlock](w.Server(), evalfun.ParseCells, evalfun.Equal, logger)
	go func() {
		<-ctx.Done()
		parser.Stop()
	}()

	eval := dageval.Launch[evalfun.SourceBlock, evalfun.Result, evalfun.Env](parser.Server, evalfun.Eval, evalfun.Env{}, logger)
	go func() {
		<-ctx.Done()
		eval.Stop()
	}()

	return eval
}

func runWatch(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	path := args[0]
	logger := log.New(os.Stderr, "[liveeval] ", log.LstdFlags)
	cfg := config.Load(os.Getenv(config.EnvConfigFile))

	ctx, cancel := rootContext()
	defer cancel()

	eval := launchPipeline(ctx, path, cfg, logger)

	humanReadable := isatty.IsTerminal(os.Stdout.Fd())
	mb := newPrintMailbox(eval, humanReadable)
	eval.Server.Subscribe(mb)

	<-ctx.Done()
}

func runServe(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	path := args[0]
	addr := ""
	for i := 1; i < len(args); i++ {
		if args[i] == "-addr" && i+1 < len(args) {
			addr = args[i+1]
			i++
		}
	}

	logger := log.New(os.Stderr, "[liveeval] ", log.LstdFlags)
	cfg := config.Load(os.Getenv(config.EnvConfigFile))
	if addr != "" {
		cfg.ListenAddr = addr
	}

	ctx, cancel := rootContext()
	defer cancel()

	eval := launchPipeline(ctx, path, cfg, logger)
	srv := httpapi.New[evalfun.SourceBlock, evalfun.Result, evalfun.Env](eval, logger)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Handler()}
	go func() {
		logger.Printf("serving HTTP on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("http server: %v", err)
		}
	}()

	grpcAddr := grpcAddrFor(cfg.ListenAddr)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Printf("grpc listen %s: %v", grpcAddr, err)
	} else {
		go func() {
			logger.Printf("serving gRPC LiveEvalService on %s", grpcAddr)
			if err := srv.ServeGRPC(ctx, lis); err != nil {
				logger.Printf("grpc server: %v", err)
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

// grpcAddrFor derives the gRPC listen address from the HTTP one by
// incrementing the port, so `serve` never needs a second flag for the
// common case.
func grpcAddrFor(httpAddr string) string {
	host, port, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return httpAddr
	}
	var p int
	if _, err := fmt.Sscanf(port, "%d", &p); err != nil {
		return httpAddr
	}
	return net.JoinHostPort(host, fmt.Sprintf("%d", p+1))
}

// runExport watches path just long enough for every cell to reach
// Complete (no cell left Waiting or Running, and the cell count unchanged
// over several consecutive polls; see waitForSettle), then writes the internal/wire binary
// snapshot (funbit-encoded, spec.md's DOMAIN STACK "liveeval export"
// entry) to stdout and exits.
func runExport(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	path := args[0]
	logger := log.New(os.Stderr, "[liveeval] ", log.LstdFlags)
	cfg := config.Load(os.Getenv(config.EnvConfigFile))

	ctx, cancel := rootContext()
	defer cancel()

	eval := launchPipeline(ctx, path, cfg, logger)
	defer eval.Stop()

	if !waitForSettle(ctx, eval) {
		logger.Print("export: interrupted before evaluation settled")
		os.Exit(1)
	}

	payload, err := wire.EncodeSnapshotBinary(eval.Server.State())
	if err != nil {
		log.Fatalf("liveeval export: encoding snapshot: %v", err)
	}
	os.Stdout.Write(payload)
}

// waitForSettle polls the evaluator's outward state until every cell is
// Complete and the cell count has been the same on four consecutive
// checks, or ctx is cancelled first.
func waitForSettle(ctx context.Context, eval dageval.Handle[evalfun.SourceBlock, evalfun.Result, evalfun.Env]) bool {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	lastLen := -1
	stableRounds := 0
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			nl := eval.Server.State()
			settled := true
			for _, v := range nl.Values() {
				if v.Status.Tag != dageval.Complete {
					settled = false
					break
				}
			}
			if settled && nl.Len() == lastLen {
				stableRounds++
			} else {
				stableRounds = 0
			}
			lastLen = nl.Len()
			if settled && stableRounds >= 3 {
				return true
			}
		}
	}
}

func runDescribe() {
	schema, err := liveevalpb.Describe()
	if err != nil {
		log.Fatalf("liveeval describe: %v", err)
	}
	fmt.Println(schema)
}

// printMailbox prints node-state diffs to stdout as they arrive, either as
// human-readable lines (a TTY) or as the same JSON frames `serve` streams
// (piped to another tool) — the go-isatty check cmd/liveeval uses to
// decide, per SPEC_FULL.md's DOMAIN STACK entry for that dependency.
type printMailbox struct {
	eval    dageval.Handle[evalfun.SourceBlock, evalfun.Result, evalfun.Env]
	human   bool
	encoder *json.Encoder
}

func newPrintMailbox(eval dageval.Handle[evalfun.SourceBlock, evalfun.Result, evalfun.Env], human bool) *printMailbox {
	return &printMailbox{eval: eval, human: human, encoder: json.NewEncoder(os.Stdout)}
}

func (m *printMailbox) Send(u cellUpdate) {
	if m.human {
		fmt.Printf("cells updated: %d dropped, %d new\n", u.Tail.NumDropped, len(u.Tail.NewTail))
		return
	}
	payload, err := wire.EncodeUpdate(u)
	if err != nil {
		log.Printf("watch: encoding diff: %v", err)
		return
	}
	m.encoder.Encode(json.RawMessage(payload))
}
