// Package guardrail implements the two decision gates of the answering
// pipeline. Both gates are pure functions over their inputs.
//
// Gate 1 (EvaluateRetrieval) decides whether retrieval found enough grounding
// to call the model at all. It gates on the best score, so one highly
// relevant chunk is not diluted by marginal ones, and carries the mean score
// forward as the retrieval confidence.
//
// Gate 2 (Fuse) combines the retrieval confidence with the model's
// self-reported confidence and classifies the answer.
package guardrail

import "github.com/custodia-labs/docintel/internal/core/domain"

// Messages returned in place of an answer when Gate 1 is terminal.
const (
	NoContextMessage = "No relevant content found in the document."
	RefusedMessage   = "Not enough relevant context found in the document to answer this question."
)

// EvaluateRetrieval applies the retrieval gate to ranked results.
//
//   - no results: no_context with confidence 0
//   - best score below simThreshold: refused with confidence = mean score
//   - otherwise: pass with confidence = mean score
func EvaluateRetrieval(results []domain.RetrievedChunk, simThreshold float64) domain.RetrievalVerdict {
	if len(results) == 0 {
		return domain.RetrievalVerdict{
			Status:  domain.StatusNoContext,
			Message: NoContextMessage,
		}
	}

	best := results[0].Score
	var sum float64
	for _, r := range results {
		if r.Score > best {
			best = r.Score
		}
		sum += r.Score
	}
	avg := sum / float64(len(results))

	if best < simThreshold {
		return domain.RetrievalVerdict{
			Status:     domain.StatusRefused,
			Confidence: avg,
			BestScore:  best,
			Message:    RefusedMessage,
		}
	}

	return domain.RetrievalVerdict{
		Status:     domain.StatusPass,
		Confidence: avg,
		BestScore:  best,
	}
}

// Fuse combines retrieval confidence r and model confidence m with equal
// weights, clamps to [0, 1], and classifies against confThreshold.
func Fuse(r, m, confThreshold float64) (float64, domain.GuardrailStatus) {
	combined := clamp(0.5*r+0.5*m, 0, 1)
	if combined >= confThreshold {
		return combined, domain.StatusGrounded
	}
	return combined, domain.StatusLowConfidence
}

func clamp(v, lo, hi float64) float64 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
