package nodelist

// TailUpdate describes "drop the last NumDropped elements of a list, then
// append NewTail". It is a monoid: composing two edits collapses them into
// one by normalizing against the observed prefix — a later drop may
// consume part of an earlier append.
type TailUpdate[A any] struct {
	NumDropped int
	NewTail    []A
}

// Identity is the empty TailUpdate (mempty).
func Identity[A any]() TailUpdate[A] {
	return TailUpdate[A]{}
}

// Compose returns the TailUpdate equivalent to applying u1 then u2.
func Compose[A any](u1, u2 TailUpdate[A]) TailUpdate[A] {
	if u2.NumDropped <= len(u1.NewTail) {
		kept := u1.NewTail[:len(u1.NewTail)-u2.NumDropped]
		newTail := make([]A, 0, len(kept)+len(u2.NewTail))
		newTail = append(newTail, kept...)
		newTail = append(newTail, u2.NewTail...)
		return TailUpdate[A]{NumDropped: u1.NumDropped, NewTail: newTail}
	}
	extra := u2.NumDropped - len(u1.NewTail)
	return TailUpdate[A]{
		NumDropped: u1.NumDropped + extra,
		NewTail:    append([]A{}, u2.NewTail...),
	}
}

func applyTail[A any](s []A, u TailUpdate[A]) []A {
	n := len(s) - u.NumDropped
	if n < 0 {
		n = 0
	}
	out := make([]A, 0, n+len(u.NewTail))
	out = append(out, s[:n]...)
	out = append(out, u.NewTail...)
	return out
}
