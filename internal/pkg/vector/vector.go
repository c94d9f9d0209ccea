// Package vector holds the similarity math shared by the ranker and the vector stores.
package vector

import "math"

// Cosine returns the cosine similarity of a and b. Vectors of different
// length are compared over their common prefix. A zero-norm vector yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0
	}
	return score
}
