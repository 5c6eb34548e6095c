package nodelist

// NodeListUpdate is the diff type for a NodeList[A]: a TailUpdate over the
// ordered id sequence paired with a MapUpdate describing what happened to
// each touched id. The two must be consistent: every id in Tail.NewTail
// has a Create in Map, every id dropped by Tail has a Delete in Map.
type NodeListUpdate[A any] struct {
	Tail TailUpdate[NodeId]
	Map  MapUpdate[NodeId, A]
}

// IdentityUpdate is the empty NodeListUpdate (mempty); the zero value
// already satisfies this, IdentityUpdate exists for readability.
func IdentityUpdate[A any]() NodeListUpdate[A] {
	return NodeListUpdate[A]{}
}

// Compose returns the NodeListUpdate equivalent to applying u then next.
func (u NodeListUpdate[A]) Compose(next NodeListUpdate[A]) NodeListUpdate[A] {
	return NodeListUpdate[A]{
		Tail: Compose(u.Tail, next.Tail),
		Map:  ComposeMap(u.Map, next.Map),
	}
}

// IsEmpty reports whether u is (observationally) the identity update.
func (u NodeListUpdate[A]) IsEmpty() bool {
	return u.Tail.NumDropped == 0 && len(u.Tail.NewTail) == 0 && len(u.Map) == 0
}
