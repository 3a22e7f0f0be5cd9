package domain

// GuardrailStatus classifies the outcome of a question-answering cycle.
type GuardrailStatus string

const (
	// StatusNoContext means retrieval returned nothing.
	StatusNoContext GuardrailStatus = "no_context"

	// StatusRefused means the best retrieved chunk was below the similarity
	// threshold and no model call was made.
	StatusRefused GuardrailStatus = "refused"

	// StatusPass means retrieval cleared the first gate. It is never returned
	// to callers; generation always follows.
	StatusPass GuardrailStatus = "pass"

	// StatusGrounded means the combined confidence cleared the second gate.
	StatusGrounded GuardrailStatus = "grounded"

	// StatusLowConfidence means an answer was generated but the combined
	// confidence fell below the threshold.
	StatusLowConfidence GuardrailStatus = "low_confidence"
)

// IsTerminal reports whether the status ends the cycle before generation.
func (s GuardrailStatus) IsTerminal() bool {
	return s == StatusNoContext || s == StatusRefused
}

// Label returns a short human-readable label for display.
func (s GuardrailStatus) Label() string {
	switch s {
	case StatusGrounded:
		return "Grounded"
	case StatusLowConfidence:
		return "Low Confidence"
	case StatusNoContext:
		return "No Context"
	case StatusRefused:
		return "Refused"
	case StatusPass:
		return "Pass"
	default:
		return string(s)
	}
}

// RetrievedChunk is a single ranked search result.
type RetrievedChunk struct {
	// Text is the chunk text.
	Text string

	// Score is the inner product with the query vector.
	Score float64

	// Position is the chunk's index in the document's chunk sequence.
	Position int
}

// RetrievalVerdict is the output of the retrieval gate.
type RetrievalVerdict struct {
	Status GuardrailStatus

	// Confidence is 0 for no_context and the mean score otherwise.
	Confidence float64

	// BestScore is the highest retrieved score, used for gating.
	BestScore float64

	// Message is set when the verdict is terminal.
	Message string
}

// ParsedAnswer is the structured triple recovered from model output.
type ParsedAnswer struct {
	Answer     string
	Confidence float64
	SourceText string
}

// Source is a retrieved chunk returned alongside an answer.
type Source struct {
	Text            string  `json:"text"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Answer is the final result of asking a question about a document.
type Answer struct {
	Answer          string          `json:"answer"`
	Sources         []Source        `json:"sources"`
	Confidence      float64         `json:"confidence"`
	GuardrailStatus GuardrailStatus `json:"guardrail_status"`
}

// HighConfidence is the lower bound of the high confidence band.
const HighConfidence = 0.70

// ConfidenceBand buckets a confidence score for display.
type ConfidenceBand int

// Confidence bands, lowest first.
const (
	BandLow ConfidenceBand = iota
	BandMedium
	BandHigh
)

// BandFor returns the band for a confidence. Medium starts at the default
// confidence threshold.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= HighConfidence:
		return BandHigh
	case confidence >= DefaultConfidenceThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Badge returns ● for high, ◐ for medium and ○ for low.
func (b ConfidenceBand) Badge() string {
	switch b {
	case BandHigh:
		return "●"
	case BandMedium:
		return "◐"
	default:
		return "○"
	}
}
