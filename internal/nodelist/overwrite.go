package nodelist

// Overwrite is the incremental-state type for a value whose only possible
// edit is "replace wholesale" — used by the file watcher, whose state is
// the latest file contents. NoChange is the monoid identity; composing two
// Overwrites keeps the later OverwriteWith, i.e. "latest wins".
type Overwrite[T any] struct {
	changed bool
	value   T
}

// NoChange is the identity Overwrite.
func NoChange[T any]() Overwrite[T] {
	return Overwrite[T]{}
}

// OverwriteWith wraps a replacement value.
func OverwriteWith[T any](v T) Overwrite[T] {
	return Overwrite[T]{changed: true, value: v}
}

// Changed reports whether this Overwrite carries a replacement.
func (o Overwrite[T]) Changed() bool {
	return o.changed
}

// Value returns the replacement value and true, or the zero value and
// false if this is NoChange.
func (o Overwrite[T]) Value() (T, bool) {
	return o.value, o.changed
}

// Compose implements the monoid: later-wins.
func (o Overwrite[T]) Compose(next Overwrite[T]) Overwrite[T] {
	if next.changed {
		return next
	}
	return o
}

// Apply folds an Overwrite onto a base value of the same type, replacing
// it if changed.
func Apply[T any](base T, o Overwrite[T]) T {
	if o.changed {
		return o.value
	}
	return base
}
