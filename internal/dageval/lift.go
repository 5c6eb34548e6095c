package dageval

import "github.com/daios-ai/liveeval/internal/nodelist"

// liftUpdate rewraps a parser diff's Create/Update entries as NodeState
// values in status Waiting (spec §4.5.2 step 3), reusing the parser's
// NodeIds unchanged and passing Deletes and the tail shape straight
// through. The evaluator never mints its own NodeIds for source cells —
// doing so would break the identity the parser, evaluator and every
// downstream subscriber must agree on.
func liftUpdate[I, O any](u nodelist.NodeListUpdate[I]) nodelist.NodeListUpdate[NodeState[I, O]] {
	m := make(nodelist.MapUpdate[nodelist.NodeId, NodeState[I, O]], len(u.Map))
	for id, elt := range u.Map {
		switch elt.Tag {
		case nodelist.EltCreate:
			m[id] = nodelist.EltCreateOf(NodeState[I, O]{Input: elt.Value, Status: WaitingStatus[O]()})
		case nodelist.EltUpdate:
			m[id] = nodelist.EltUpdateOf(NodeState[I, O]{Input: elt.Value, Status: WaitingStatus[O]()})
		case nodelist.EltDelete:
			m[id] = nodelist.EltDeleteOf[NodeState[I, O]]()
		}
	}
	return nodelist.NodeListUpdate[NodeState[I, O]]{Tail: u.Tail, Map: m}
}

// singleUpdate builds a Map-only update (no tail movement) that replaces
// one existing node's value in place — used for Running/Complete status
// transitions, which never change cell identity or order.
func singleUpdate[I, O any](id nodelist.NodeId, v NodeState[I, O]) nodelist.NodeListUpdate[NodeState[I, O]] {
	return nodelist.NodeListUpdate[NodeState[I, O]]{
		Map: nodelist.MapUpdate[nodelist.NodeId, NodeState[I, O]]{id: nodelist.EltUpdateOf(v)},
	}
}
