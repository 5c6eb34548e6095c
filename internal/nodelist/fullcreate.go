package nodelist

// FullCreateUpdate builds the NodeListUpdate that creates every node
// currently in nl, preserving their NodeIds, as if nl had been built up
// from empty by one update. Used when a downstream subscriber needs to
// replay an upstream Subscribe snapshot through its own diff-shaped
// processing instead of special-casing "the first message".
func FullCreateUpdate[A any](nl *NodeList[A]) NodeListUpdate[A] {
	ids := nl.Ordered()
	m := make(MapUpdate[NodeId, A], len(ids))
	for _, id := range ids {
		m[id] = EltCreateOf(nl.MustGet(id))
	}
	newTail := make([]NodeId, len(ids))
	copy(newTail, ids)
	return NodeListUpdate[A]{
		Tail: TailUpdate[NodeId]{NewTail: newTail},
		Map:  m,
	}
}
