package retriever

import "math"

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||) in a single pass.
// If either vector has zero magnitude the similarity is undefined; it is
// reported as 0.0 rather than dividing by zero. Accumulation is done in
// float64 so scores are stable regardless of vector length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// magnitude returns the L2 norm of v.
func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
