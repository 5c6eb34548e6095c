package nodelist

// NodeList is an ordered sequence of NodeIds together with a value for
// each. Invariant: orderedNodes and the keys of nodeMap are equal as sets,
// and orderedNodes has no duplicates.
type NodeList[A any] struct {
	orderedNodes []NodeId
	nodeMap      map[NodeId]A
}

// New returns an empty NodeList.
func New[A any]() *NodeList[A] {
	return &NodeList[A]{nodeMap: make(map[NodeId]A)}
}

// Ordered returns the current ordered id sequence. Callers must not mutate
// the returned slice.
func (nl *NodeList[A]) Ordered() []NodeId {
	return nl.orderedNodes
}

// Len returns the number of nodes.
func (nl *NodeList[A]) Len() int {
	return len(nl.orderedNodes)
}

// Get returns the value for id and whether it is present.
func (nl *NodeList[A]) Get(id NodeId) (A, bool) {
	v, ok := nl.nodeMap[id]
	return v, ok
}

// MustGet returns the value for id, panicking if absent. Used where the
// caller has already established id came from Ordered() — a lookup miss
// there is an invariant violation (spec §7: "impossible" case).
func (nl *NodeList[A]) MustGet(id NodeId) A {
	v, ok := nl.nodeMap[id]
	if !ok {
		panic("nodelist: id from orderedNodes missing from nodeMap")
	}
	return v
}

// Values returns the ordered values, i.e. Get(id) for each id in Ordered().
func (nl *NodeList[A]) Values() []A {
	out := make([]A, len(nl.orderedNodes))
	for i, id := range nl.orderedNodes {
		out[i] = nl.MustGet(id)
	}
	return out
}

// Clone returns a deep-enough copy (new slice and map; values copied by
// assignment) suitable for a subscriber to hold as its local state.
func (nl *NodeList[A]) Clone() *NodeList[A] {
	ordered := make([]NodeId, len(nl.orderedNodes))
	copy(ordered, nl.orderedNodes)
	m := make(map[NodeId]A, len(nl.nodeMap))
	for k, v := range nl.nodeMap {
		m[k] = v
	}
	return &NodeList[A]{orderedNodes: ordered, nodeMap: m}
}

// Apply destructively applies u to nl, mutating it in place, and also
// returns nl for chaining.
func (nl *NodeList[A]) Apply(u NodeListUpdate[A]) *NodeList[A] {
	nl.orderedNodes = applyTail(nl.orderedNodes, u.Tail)
	applyMap(nl.nodeMap, u.Map)
	return nl
}
