package hdbscan

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewDataset_Valid(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	ds, err := NewDataset(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Len() != 3 || ds.Dims() != 2 {
		t.Fatalf("got %dx%d, want 3x2", ds.Len(), ds.Dims())
	}
	if p := ds.Point(1); p[0] != 3 || p[1] != 4 {
		t.Errorf("Point(1) = %v, want [3 4]", p)
	}
	if len(ds.Flat()) != 6 {
		t.Errorf("Flat() length = %d, want 6", len(ds.Flat()))
	}

	// The dataset owns a copy.
	rows[0][0] = 100
	if ds.Point(0)[0] != 1 {
		t.Error("dataset aliases the caller's rows")
	}
}

func TestNewDataset_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
	}{
		{"empty", nil},
		{"zero dims", [][]float64{{}, {}}},
		{"ragged", [][]float64{{1, 2}, {3}}},
		{"NaN", [][]float64{{1, 2}, {math.NaN(), 4}}},
		{"Inf", [][]float64{{1, math.Inf(-1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDataset(tt.rows); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}
