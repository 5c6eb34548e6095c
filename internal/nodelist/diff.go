package nodelist

// CommonPrefixLength returns the length of the longest common prefix of
// old and new under eq. This — not longest-common-subsequence — is the
// right notion of "unchanged" for a linear dependency chain: a change to
// element k invalidates every element after it regardless of whether a
// later element happens to still compare equal.
func CommonPrefixLength[A any](old, new []A, eq func(A, A) bool) int {
	n := len(old)
	if len(new) < n {
		n = len(new)
	}
	p := 0
	for p < n && eq(old[p], new[p]) {
		p++
	}
	return p
}

// ComputeUpdate diffs nl's current values against newVals by longest
// common prefix and returns the NodeListUpdate that reconciles them,
// allocating a fresh NodeId (via fresh) for every element past the
// prefix. It does not mutate nl; callers apply the returned update
// themselves (typically via an incremental-state server's Update+
// FlushDiffs).
func ComputeUpdate[A any](nl *NodeList[A], newVals []A, eq func(A, A) bool, fresh *FreshNames) NodeListUpdate[A] {
	oldVals := nl.Values()
	oldIds := nl.Ordered()
	p := CommonPrefixLength(oldVals, newVals, eq)

	dropped := oldIds[p:]
	newTailVals := newVals[p:]
	newTailIds := make([]NodeId, len(newTailVals))

	m := make(MapUpdate[NodeId, A], len(dropped)+len(newTailIds))
	for _, id := range dropped {
		m[id] = EltDeleteOf[A]()
	}
	for i, v := range newTailVals {
		id := fresh.Next()
		newTailIds[i] = id
		m[id] = EltCreateOf(v)
	}

	return NodeListUpdate[A]{
		Tail: TailUpdate[NodeId]{NumDropped: len(dropped), NewTail: newTailIds},
		Map:  m,
	}
}
