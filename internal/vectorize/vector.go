package vectorize

import "math"

// Vector is a sparse feature vector with a fixed dimensionality.
// Indices are strictly increasing.
type Vector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// Dot returns the inner product with a dense weight slice of length Dim.
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * dense[idx]
	}
	return sum
}

// AddScaledTo adds alpha*v into dense.
func (v Vector) AddScaledTo(dense []float64, alpha float64) {
	for i, idx := range v.Indices {
		dense[idx] += alpha * v.Values[i]
	}
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dense expands the vector into a dense slice.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		out[idx] = v.Values[i]
	}
	return out
}
