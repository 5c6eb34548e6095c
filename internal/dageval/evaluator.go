// Package dageval implements the DAG evaluator actor (spec §4.5): it
// subscribes to a cell parser, drives one cell at a time through an
// externally supplied evalFun, threads an opaque environment forward
// across cells, and publishes per-cell evaluation status.
package dageval

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daios-ai/liveeval/internal/incstate"
	"github.com/daios-ai/liveeval/internal/mailbox"
	"github.com/daios-ai/liveeval/internal/nodelist"
)

// EvalFunc is the externally supplied, per-cell evaluation function (spec
// §5): it must poll ctx at its own suspension points to be interruptible.
type EvalFunc[I, O, S any] func(ctx context.Context, env S, input I) (O, S)

// Handle is returned by Launch: the outward NodeState stream plus a Stop
// function that tears down the evaluator and any job it has in flight.
type Handle[I, O, S any] struct {
	Server *incstate.Server[*nodelist.NodeList[NodeState[I, O]], nodelist.NodeListUpdate[NodeState[I, O]]]
	stop   func()
}

// Stop tears down the evaluator actor, cancelling any running job.
func (h Handle[I, O, S]) Stop() { h.stop() }

type evaluator[I, O, S any] struct {
	evalFun EvalFunc[I, O, S]
	logger  *log.Logger

	parserServer *incstate.Server[*nodelist.NodeList[I], nodelist.NodeListUpdate[I]]
	outward      *incstate.Server[*nodelist.NodeList[NodeState[I, O]], nodelist.NodeListUpdate[NodeState[I, O]]]

	prevEnvs []S
	curJob   *runningJob
}

func applyNodeState[I, O any](s *nodelist.NodeList[NodeState[I, O]], u nodelist.NodeListUpdate[NodeState[I, O]]) *nodelist.NodeList[NodeState[I, O]] {
	return s.WithApplied(u)
}

// Launch spawns the evaluator actor subscribing to parserServer, threading
// initialEnv as prevEnvs[0] (EvaluatorState, spec §3), and returns a handle
// to its outward NodeList[NodeState[I,O]] state.
func Launch[I, O, S any](
	parserServer *incstate.Server[*nodelist.NodeList[I], nodelist.NodeListUpdate[I]],
	evalFun EvalFunc[I, O, S],
	initialEnv S,
	logger *log.Logger,
) Handle[I, O, S] {
	if logger == nil {
		logger = log.New(os.Stderr, "[dageval] ", log.LstdFlags)
	}
	e := &evaluator[I, O, S]{
		evalFun:      evalFun,
		logger:       logger,
		parserServer: parserServer,
		outward:      incstate.NewServer[*nodelist.NodeList[NodeState[I, O]], nodelist.NodeListUpdate[NodeState[I, O]]](nodelist.New[NodeState[I, O]](), applyNodeState[I, O]),
		prevEnvs:     []S{initialEnv},
	}

	h := mailbox.LaunchActor(e.handle)
	h.Mailbox.Send(message[I, O, S]{init: true})

	var stopOnce sync.Once
	return Handle[I, O, S]{
		Server: e.outward,
		stop: func() {
			stopOnce.Do(func() {
				done := make(chan struct{})
				h.Mailbox.Send(message[I, O, S]{stop: done})
				<-done
				h.Stop()
			})
		},
	}
}

func (e *evaluator[I, O, S]) handle(self mailbox.Mailbox[message[I, O, S]], m message[I, O, S]) {
	switch {
	case m.init:
		lifted := mailbox.SliceMailbox(func(u nodelist.NodeListUpdate[I]) message[I, O, S] {
			return message[I, O, S]{sourceUpdate: &u}
		}, self)
		initial := e.parserServer.Subscribe(lifted)
		u := nodelist.FullCreateUpdate(initial)
		e.handleSourceUpdate(self, u)
	case m.sourceUpdate != nil:
		e.handleSourceUpdate(self, *m.sourceUpdate)
	case m.complete != nil:
		e.handleJobComplete(self, *m.complete)
	case m.stop != nil:
		if e.curJob != nil {
			e.curJob.cancel()
			e.curJob = nil
		}
		close(m.stop)
	}
}

// handleSourceUpdate implements spec §4.5.2.
func (e *evaluator[I, O, S]) handleSourceUpdate(self mailbox.Mailbox[message[I, O, S]], u nodelist.NodeListUpdate[I]) {
	nTotal := e.outward.State().Len()
	nDropped := u.Tail.NumDropped
	nValid := nTotal - nDropped

	if nValid+1 < len(e.prevEnvs) {
		e.prevEnvs = e.prevEnvs[:nValid+1]
	}

	e.outward.Update(liftUpdate[I, O](u))

	if e.curJob != nil && e.curJob.jobIndex >= nValid {
		e.curJob.cancel()
		e.curJob = nil
	}
	if e.curJob == nil {
		e.launchNextJob(self)
	}

	e.outward.FlushDiffs()
}

// launchNextJob implements spec §4.5.3. It reads the cell list as it will
// be immediately after this batch's buffered Updates are applied (via
// Projected), since the relevant diff has already been buffered but not
// yet flushed when this is called from handleSourceUpdate.
func (e *evaluator[I, O, S]) launchNextJob(self mailbox.Mailbox[message[I, O, S]]) {
	jobIndex := len(e.prevEnvs) - 1
	cellList := e.outward.Projected()
	if jobIndex >= cellList.Len() {
		return
	}
	nodeID := cellList.Ordered()[jobIndex]
	cell := cellList.MustGet(nodeID).Input
	env := e.prevEnvs[jobIndex]

	jobID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	var g errgroup.Group
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job %s for cell %d panicked: %v", jobID, nodeID, r)
				var zero O
				self.Send(message[I, O, S]{complete: &jobComplete[O, S]{jobID: jobID, result: zero, env: env}})
			}
		}()
		result, env2 := e.evalFun(ctx, env, cell)
		self.Send(message[I, O, S]{complete: &jobComplete[O, S]{jobID: jobID, result: result, env: env2}})
		return nil
	})
	go func() {
		if err := g.Wait(); err != nil {
			e.logger.Print(err)
		}
	}()

	e.curJob = &runningJob{id: jobID, nodeID: nodeID, jobIndex: jobIndex, cancel: cancel}
	e.outward.Update(singleUpdate(nodeID, NodeState[I, O]{Input: cell, Status: RunningStatus[O]()}))
}

// handleJobComplete implements spec §4.5.4, including the zombie check.
func (e *evaluator[I, O, S]) handleJobComplete(self mailbox.Mailbox[message[I, O, S]], jc jobComplete[O, S]) {
	if e.curJob == nil || e.curJob.id != jc.jobID {
		e.logger.Printf("discarding zombie completion %s", jc.jobID)
		return
	}

	nodeID := e.curJob.nodeID
	cellList := e.outward.State()
	input := cellList.MustGet(nodeID).Input
	e.outward.Update(singleUpdate(nodeID, NodeState[I, O]{Input: input, Status: CompleteStatus(jc.result)}))
	e.curJob = nil
	e.prevEnvs = append(e.prevEnvs, jc.env)

	e.launchNextJob(self)

	e.outward.FlushDiffs()
}
