// Package vectormath provides the small float32 vector kernels shared
// by the embedding adapters and the flat engine.
package vectormath

import "math"

// Normalize scales v to unit length in place and returns it.
// A zero vector is returned unchanged rather than dividing by zero.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// Dot returns the inner product of a and b. For unit vectors this is
// the cosine similarity.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// IsNormalized reports whether v has unit length within eps.
func IsNormalized(v []float32, eps float64) bool {
	return math.Abs(Dot(v, v)-1.0) <= eps
}
