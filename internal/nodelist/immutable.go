package nodelist

// WithApplied returns a new NodeList with u applied, leaving nl untouched.
// This is the form an incremental-state server's applyDiff needs: state
// snapshots handed to subscribers at Subscribe time must stay valid even
// as later updates land.
func (nl *NodeList[A]) WithApplied(u NodeListUpdate[A]) *NodeList[A] {
	return nl.Clone().Apply(u)
}
