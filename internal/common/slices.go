package common

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Last returns the last element of the slice and true, or the zero value and false if empty.
func Last[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[len(s)-1], true
}

// Clone returns a shallow copy of s that never aliases its backing array.
// A nil slice stays nil.
func Clone[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}

	return append(S(make([]E, 0, len(s))), s...)
}
