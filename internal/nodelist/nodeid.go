// Package nodelist implements the ordered, identity-stable list data model
// of the live-eval core: NodeId, NodeList, and the monoidal update types
// that describe incremental changes to a NodeList (TailUpdate, MapUpdate,
// NodeListUpdate).
package nodelist

import "sync/atomic"

// NodeId is an opaque, monotonically-allocated identity. Two NodeIds
// drawn from the same FreshNames are equal iff they were allocated by the
// same call to its Next, or copied from one; separate FreshNames values
// each count from 1 and so hand out the same ids. Identities are stable across edits: a cell whose parsed
// form is unchanged keeps its NodeId across a re-parse.
type NodeId int64

// FreshNames allocates NodeIds monotonically. Zero value is ready to use
// and starts counting from 1, reserving 0 as a never-allocated sentinel.
type FreshNames struct {
	next atomic.Int64
}

// Next returns a NodeId not previously returned by this FreshNames.
func (f *FreshNames) Next() NodeId {
	return NodeId(f.next.Add(1))
}
