package hdbscan

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dataset is an immutable, dense, row-major point set. Row i is the point
// with index i.
type Dataset struct {
	m    *mat.Dense
	n    int
	dims int
}

// NewDataset validates rows and copies them into a Dataset. It fails with
// ErrInvalidInput when rows is empty, when rows have zero or inconsistent
// dimensionality, or when any coordinate is NaN or infinite.
func NewDataset(rows [][]float64) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, invalidInput("dataset is empty")
	}
	dims := len(rows[0])
	if dims == 0 {
		return nil, invalidInput("row 0 has no coordinates")
	}

	flat := make([]float64, 0, len(rows)*dims)
	for i, row := range rows {
		if len(row) != dims {
			return nil, invalidInput("row %d has %d coordinates, want %d", i, len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, invalidInput("row %d column %d is not finite: %v", i, j, v)
			}
		}
		flat = append(flat, row...)
	}

	return &Dataset{m: mat.NewDense(len(rows), dims, flat), n: len(rows), dims: dims}, nil
}

// Len returns the number of points.
func (d *Dataset) Len() int { return d.n }

// Dims returns the dimensionality of each point.
func (d *Dataset) Dims() int { return d.dims }

// Point returns row i. The returned slice aliases the dataset and must not
// be modified.
func (d *Dataset) Point(i int) []float64 {
	return d.m.RawRowView(i)
}

// Flat returns the row-major backing slice of length Len()*Dims(). It must
// not be modified.
func (d *Dataset) Flat() []float64 {
	return d.m.RawMatrix().Data
}
