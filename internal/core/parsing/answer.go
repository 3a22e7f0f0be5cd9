package parsing

import (
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// ParseAnswer recovers {answer, confidence, source_text} from model output.
//
// On success a missing confidence is DefaultConfidence, a missing source_text
// is empty and a missing answer is the raw text. On failure the raw text is
// the answer with DefaultConfidence and no source. ok reports which path was
// taken.
func ParseAnswer(raw string) (parsed domain.ParsedAnswer, ok bool) {
	raw = strings.TrimSpace(raw)
	fallback := domain.ParsedAnswer{
		Answer:     raw,
		Confidence: DefaultConfidence,
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return fallback, false
	}

	parsed = fallback
	if s, present := text(obj["answer"]); present {
		parsed.Answer = s
	}
	if s, present := text(obj["source_text"]); present {
		parsed.SourceText = s
	}

	conf, present, err := number(obj["confidence"])
	if err != nil {
		return fallback, false
	}
	if present {
		parsed.Confidence = conf
	}
	return parsed, true
}
