package jval

// Either holds exactly one of two alternatives. By convention the right
// side is the preferred one; [EitherReader] tries it first. The zero value
// is the left alternative's zero value.
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

// Left returns an Either holding the left alternative.
func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{left: v}
}

// Right returns an Either holding the right alternative.
func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{right: v, isRight: true}
}

// IsRight reports whether the right alternative is held.
func (e Either[L, R]) IsRight() bool { return e.isRight }

// IsLeft reports whether the left alternative is held.
func (e Either[L, R]) IsLeft() bool { return !e.isRight }

// Left returns the left alternative and whether it is the one held.
func (e Either[L, R]) Left() (L, bool) { return e.left, !e.isRight }

// Right returns the right alternative and whether it is the one held.
func (e Either[L, R]) Right() (R, bool) { return e.right, e.isRight }
