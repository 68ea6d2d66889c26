// Package vectorindex provides a flat, exact nearest-neighbor index over
// embedding vectors. Search is brute force squared-L2; for one document's
// worth of chunks that beats any approximate structure on both accuracy
// and simplicity.
package vectorindex

import (
	"fmt"
	"sort"
)

// DimensionMismatchError is returned when a vector's dimensionality does
// not match the index.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: index has %d, got %d", e.Want, e.Got)
}

// Result is one search hit. Position is the 0-based insertion position of
// the vector, Distance is squared L2 to the query.
type Result struct {
	Position int
	Distance float32
}

// FlatIndex stores vectors in insertion order. The dimension is fixed by
// the first vector added; every later vector must match it. A FlatIndex
// is not safe for concurrent mutation, but concurrent Search calls are
// fine once building is done.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// New creates an empty index. The dimension is locked in by the first
// Add.
func New() *FlatIndex {
	return &FlatIndex{}
}

// Dimension returns the index dimensionality, or 0 while empty.
func (ix *FlatIndex) Dimension() int {
	return ix.dim
}

// Len returns the number of stored vectors.
func (ix *FlatIndex) Len() int {
	return len(ix.vectors)
}

// Add appends a vector to the index.
func (ix *FlatIndex) Add(vector []float32) error {
	if len(vector) == 0 {
		return &DimensionMismatchError{Want: ix.dim, Got: 0}
	}

	if ix.dim == 0 {
		ix.dim = len(vector)
	} else if len(vector) != ix.dim {
		return &DimensionMismatchError{Want: ix.dim, Got: len(vector)}
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)
	ix.vectors = append(ix.vectors, stored)
	return nil
}

// AddBatch appends vectors in order, stopping at the first mismatch.
func (ix *FlatIndex) AddBatch(vectors [][]float32) error {
	for i, vector := range vectors {
		if err := ix.Add(vector); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return nil
}

// Search returns the k nearest vectors to query by squared L2 distance,
// closest first. Ties break on lower position so results are
// deterministic. When k exceeds the index size all vectors are returned.
func (ix *FlatIndex) Search(query []float32, k int) ([]Result, error) {
	if ix.Len() == 0 {
		return nil, nil
	}

	if len(query) != ix.dim {
		return nil, &DimensionMismatchError{Want: ix.dim, Got: len(query)}
	}

	if k <= 0 {
		return nil, nil
	}

	results := make([]Result, len(ix.vectors))
	for i, vector := range ix.vectors {
		results[i] = Result{Position: i, Distance: squaredL2(query, vector)}
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Distance != results[b].Distance {
			return results[a].Distance < results[b].Distance
		}
		return results[a].Position < results[b].Position
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
