package candidatematcher

import "math"

// DegenerateNormEpsilon is the product-of-norms threshold at or below which the
// overlapping vectors are treated as zero-length and no score is produced.
const DegenerateNormEpsilon = 1e-12

// similarityCalculator implements the SimilarityCalculator interface
type similarityCalculator struct{}

// NewSimilarityCalculator creates a new SimilarityCalculator instance
func NewSimilarityCalculator() SimilarityCalculator {
	return &similarityCalculator{}
}

// MaskedCosineSimilarity computes cosine similarity between answers and positions
// restricted to their overlap. An index is skipped when positions is too short to
// reach it, the position is null, or the position is not a finite number in [-1, 1].
// Formula over the overlap: cos(θ) = (a · p) / (||a|| * ||p||)
func (*similarityCalculator) MaskedCosineSimilarity(
	answers []float64,
	positions []Position,
) (float64, int, bool) {
	var dotProduct, answerNorm, positionNorm float64
	overlap := 0

	// Accumulate dot product and both norms in a single pass
	for i, a := range answers {
		if i >= len(positions) || !positions[i].usable() {
			continue
		}
		p := positions[i].Value

		dotProduct += a * p
		answerNorm += a * a
		positionNorm += p * p
		overlap++
	}

	if overlap == 0 {
		return 0.0, 0, false
	}

	denom := math.Sqrt(answerNorm) * math.Sqrt(positionNorm)
	if denom <= DegenerateNormEpsilon {
		return 0.0, overlap, false
	}

	return clampUnit(dotProduct / denom), overlap, true
}

// Percent maps a score in [-1, 1] to [0, 100], rounded half away from zero to 2 decimals
func (*similarityCalculator) Percent(score float64) float64 {
	percent := (clampUnit(score) + 1) * 50
	return math.Round(percent*100) / 100
}

// clampUnit clamps to [-1, 1] to absorb floating point overshoot
func clampUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	} else if v < -1.0 {
		return -1.0
	}
	return v
}
