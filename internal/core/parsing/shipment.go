package parsing

import (
	"strings"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// ParseShipment recovers the shipment record and confidence from model output.
//
// Every schema field is always present in the result. Missing, null, empty
// or structured (object/array) values map to nil; numbers and booleans keep
// their JSON text. Confidence defaults to DefaultConfidence and is clamped to
// [0, 1]. Unparsable output yields an all-nil record.
func ParseShipment(raw string) (record domain.ShipmentRecord, confidence float64, ok bool) {
	obj, err := decodeObject(strings.TrimSpace(raw))
	if err != nil {
		return domain.ShipmentRecord{}, DefaultConfidence, false
	}

	for _, key := range domain.ShipmentFields {
		v := obj[key]
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		s, present := text(v)
		s = strings.TrimSpace(s)
		if !present || s == "" {
			continue
		}
		*record.Field(key) = &s
	}

	confidence = DefaultConfidence
	if c, present, err := number(obj["confidence"]); err == nil && present {
		confidence = min(max(c, 0), 1)
	}
	return record, confidence, true
}
