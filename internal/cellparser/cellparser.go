// Package cellparser implements the cell parser actor of spec §4.4: it
// subscribes to a file watcher, parses each snapshot into an ordered list
// of cells, diffs that list by longest common prefix against the previous
// parse, and publishes a NodeListUpdate to its own subscribers.
package cellparser

import (
	"log"
	"os"

	"github.com/daios-ai/liveeval/internal/incstate"
	"github.com/daios-ai/liveeval/internal/mailbox"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

// ParseCellsFunc is the pluggable, pure, total language-specific parser
// (spec §6): Text -> []I.
type ParseCellsFunc[I any] func(text string) []I

// EqFunc is the decidable equality on I that prefix-diffing needs.
type EqFunc[I any] func(a, b I) bool

type message struct {
	init      bool
	overwrite nodelist.Overwrite[string]
}

// Handle is returned by Launch: the outward incremental state (one
// NodeList[I] per parse) plus a Stop function.
type Handle[I any] struct {
	Server *incstate.Server[*nodelist.NodeList[I], nodelist.NodeListUpdate[I]]
	stop   func()
}

// Stop tears down the parser actor.
func (h Handle[I]) Stop() { h.stop() }

type parser[I any] struct {
	parseCells ParseCellsFunc[I]
	eq         EqFunc[I]
	logger     *log.Logger

	watcherServer *incstate.Server[string, nodelist.Overwrite[string]]
	outward       *incstate.Server[*nodelist.NodeList[I], nodelist.NodeListUpdate[I]]
	fresh         nodelist.FreshNames
}

func applyUpdate[I any](s *nodelist.NodeList[I], u nodelist.NodeListUpdate[I]) *nodelist.NodeList[I] {
	return s.WithApplied(u)
}

// Launch spawns the parser actor subscribing to watcherServer and returns
// a handle to its outward NodeList[I] state.
func Launch[I any](
	watcherServer *incstate.Server[string, nodelist.Overwrite[string]],
	parseCells ParseCellsFunc[I],
	eq EqFunc[I],
	logger *log.Logger,
) Handle[I] {
	if logger == nil {
		logger = log.New(os.Stderr, "[cellparser] ", log.LstdFlags)
	}
	p := &parser[I]{
		parseCells:    parseCells,
		eq:            eq,
		logger:        logger,
		watcherServer: watcherServer,
		outward:       incstate.NewServer[*nodelist.NodeList[I], nodelist.NodeListUpdate[I]](nodelist.New[I](), applyUpdate[I]),
	}

	h := mailbox.LaunchActor(p.handle)
	h.Mailbox.Send(message{init: true})

	return Handle[I]{Server: p.outward, stop: h.Stop}
}

func (p *parser[I]) handle(self mailbox.Mailbox[message], m message) {
	if m.init {
		lifted := mailbox.SliceMailbox(func(u nodelist.Overwrite[string]) message {
			return message{overwrite: u}
		}, self)
		initial := p.watcherServer.Subscribe(lifted)
		p.processText(initial)
		return
	}
	text, ok := m.overwrite.Value()
	if !ok {
		return
	}
	p.processText(text)
}

// processText implements spec §4.4 steps 1-5.
func (p *parser[I]) processText(text string) {
	newCells := p.parseCells(text)
	current := p.outward.State()
	update := nodelist.ComputeUpdate(current, newCells, p.eq, &p.fresh)
	p.outward.Update(update)
	p.outward.FlushDiffs()
}
