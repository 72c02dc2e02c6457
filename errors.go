package epimesh

import (
	"github.com/pkg/errors"
)

// Precondition violations: the caller passed something the mesh cannot
// act on. Nothing has been mutated when one of these is returned.
var (
	ErrVertNotFound = errors.New("vertex not found")
	ErrEdgeNotFound = errors.New("edge not found")
	ErrFaceNotFound = errors.New("face not found")
	ErrNotIncident  = errors.New("edge not incident to vertex")
	ErrNotInRing    = errors.New("vertex not in face ring")
	ErrZeroLength   = errors.New("zero-length vector")
	ErrStale        = errors.New("derived geometry is stale")
	ErrBadArgument  = errors.New("bad argument")
)

// Geometric degeneracies: the request is well formed but the geometry or
// local topology does not admit it. Callers may retry with perturbed input.
var (
	ErrParallel      = errors.New("ray parallel to segment")
	ErrNoCrossing    = errors.New("ray crosses no edge of face")
	ErrTwoSided      = errors.New("edit would leave a face with fewer than 3 sides")
	ErrAdjacent      = errors.New("vertex adjacent to edge endpoint")
	ErrSharedFace    = errors.New("vertex shares a face with edge")
	ErrCoincident    = errors.New("coincident vertices")
	ErrAmbiguousRing = errors.New("vertex occurs more than once in face ring")
	ErrNeighborOrder = errors.New("neighbor fan does not follow projection order")
	ErrCrowded       = errors.New("no room to keep vertices apart")
)

// Invariant violations reported by [Mesh.Validate].
var (
	ErrRingOpen       = errors.New("face ring not closed")
	ErrOppositeBroken = errors.New("opposite pairing broken")
	ErrDanglingRef    = errors.New("reference to removed element")
	ErrDuplicateEdge  = errors.New("duplicate half-edge in face")
)

// ErrorKind classifies the errors returned by this package.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindPrecondition
	KindDegeneracy
	KindInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindDegeneracy:
		return "degeneracy"
	case KindInvariant:
		return "invariant"
	default:
		return "none"
	}
}

// PreconditionError reports an invalid argument, such as an id that is not
// in the mesh or a zero-length vector.
type PreconditionError struct{ Err error }

func (e *PreconditionError) Error() string { return "epimesh: " + e.Err.Error() }
func (e *PreconditionError) Unwrap() error { return e.Err }

// DegeneracyError reports a recoverable geometric or topological
// degeneracy.
type DegeneracyError struct{ Err error }

func (e *DegeneracyError) Error() string { return "epimesh: " + e.Err.Error() }
func (e *DegeneracyError) Unwrap() error { return e.Err }

// InvariantError reports a broken mesh invariant.
type InvariantError struct{ Err error }

func (e *InvariantError) Error() string { return "epimesh: " + e.Err.Error() }
func (e *InvariantError) Unwrap() error { return e.Err }

// Kind returns the kind of err, or KindNone if err was not produced by this
// package.
func Kind(err error) ErrorKind {
	var pe *PreconditionError
	var de *DegeneracyError
	var ie *InvariantError
	switch {
	case errors.As(err, &pe):
		return KindPrecondition
	case errors.As(err, &de):
		return KindDegeneracy
	case errors.As(err, &ie):
		return KindInvariant
	default:
		return KindNone
	}
}

func precondition(sentinel error, format string, args ...any) error {
	return &PreconditionError{Err: errors.Wrapf(sentinel, format, args...)}
}

func degeneracy(sentinel error, format string, args ...any) error {
	return &DegeneracyError{Err: errors.Wrapf(sentinel, format, args...)}
}

func invariant(sentinel error, format string, args ...any) error {
	return &InvariantError{Err: errors.Wrapf(sentinel, format, args...)}
}
