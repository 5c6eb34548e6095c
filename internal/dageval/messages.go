package dageval

import (
	"github.com/google/uuid"

	"github.com/daios-ai/liveeval/internal/nodelist"
)

// jobComplete is what a worker goroutine sends back to the evaluator's own
// mailbox when evalFun returns (spec §4.5.1, §4.5.3 step 2).
type jobComplete[O, S any] struct {
	jobID  uuid.UUID
	result O
	env    S
}

// message is the evaluator's sum type: SourceUpdate | JobComplete, plus an
// internal init variant used to bootstrap from the parser's Subscribe
// snapshot (spec §4.5.1) and a stop variant used to cancel any running job
// from inside the actor before the actor itself is torn down.
type message[I, O, S any] struct {
	init         bool
	sourceUpdate *nodelist.NodeListUpdate[I]
	complete     *jobComplete[O, S]
	stop         chan struct{}
}

// runningJob tracks curRunningJob from EvaluatorState (spec §3): the one
// job that may be in flight at a time, per invariant ONE-JOB.
type runningJob struct {
	id       uuid.UUID
	nodeID   nodelist.NodeId
	jobIndex int
	cancel   func()
}
