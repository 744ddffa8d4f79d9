package hdbscan

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	kinds := []error{ErrInvalidArgument, ErrInvalidInput, ErrDegenerateInput, ErrNoPriorRun, ErrRange}
	made := []error{
		invalidArgument("minPts %d", 0),
		invalidInput("row %d", 3),
		degenerateInput("n = %d", 1),
		noPriorRun("rerun"),
		rangeError("[%d, %d)", 4, 2),
	}
	for i, err := range made {
		for j, kind := range kinds {
			assert.Equal(t, i == j, errors.Is(err, kind), "%v is %v", err, kind)
		}
	}
	assert.Contains(t, made[0].Error(), "minPts 0")
}

func TestNoPriorRunHint(t *testing.T) {
	s, err := NewSession(2, DefaultConfig())
	require.NoError(t, err)

	_, err = s.Rerun(context.Background(), 3)
	require.True(t, errors.Is(err, ErrNoPriorRun))
	assert.Contains(t, errors.GetAllHints(err), "call Run with a dataset first")
	assert.Contains(t, err.Error(), "rerun")
}
