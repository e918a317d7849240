package embedding

import "math"

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched or empty vectors, and any zero-norm vector, score 0 — never
// NaN and never an error. The formula yields [-1,1]; in practice vectors
// from the same model family land in [0,1].
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
