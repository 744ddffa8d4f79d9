package hdbscan

import (
	"github.com/cockroachdb/errors"
)

// Error kinds returned by the engine. Every error produced by this package
// wraps exactly one of them, so callers can branch with errors.Is.
var (
	// ErrInvalidArgument reports a bad constructor or parameter value.
	ErrInvalidArgument = errors.New("hdbscan: invalid argument")
	// ErrInvalidInput reports a malformed dataset or query: empty, ragged,
	// non-finite, or a neighbor query with k >= n.
	ErrInvalidInput = errors.New("hdbscan: invalid input")
	// ErrDegenerateInput reports a dataset too small to cluster: fewer than
	// two points, or fewer points than minPts.
	ErrDegenerateInput = errors.New("hdbscan: degenerate input")
	// ErrNoPriorRun reports an operation that needs a completed Run.
	ErrNoPriorRun = errors.New("hdbscan: no prior run")
	// ErrRange reports an out-of-bounds index range.
	ErrRange = errors.New("hdbscan: range error")
)

func invalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

func invalidInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func degenerateInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDegenerateInput, format, args...)
}

func noPriorRun(op string) error {
	return errors.WithHint(
		errors.Wrapf(ErrNoPriorRun, "%s", op),
		"call Run with a dataset first",
	)
}

func rangeError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrRange, format, args...)
}
