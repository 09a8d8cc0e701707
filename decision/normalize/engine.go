package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"carprice/pkg/stats"
)

// Unknown is the category used for any blank categorical field.
const Unknown = "Unknown"

// Canonical engine-size tokens.
const (
	EngineElectric = "Electric"
	EngineHybrid   = "Hybrid"
	EngineUnknown  = Unknown
)

// EngineSize classifies a raw engine-size value into Electric, Hybrid,
// Unknown or a canonical numeric literal such as "3.0". Unrecognized text
// is passed through trimmed.
//
// Applying EngineSize to its own output returns the same token.
func EngineSize(raw any) string {
	switch v := raw.(type) {
	case nil:
		return EngineUnknown
	case string:
		return engineSizeText(v)
	case float64:
		return EngineSizeFromNumber(v)
	case float32:
		return EngineSizeFromNumber(float64(v))
	case int:
		return EngineSizeFromNumber(float64(v))
	case int64:
		return EngineSizeFromNumber(float64(v))
	case json.Number:
		return engineSizeText(v.String())
	default:
		return EngineUnknown
	}
}

// EngineSizeFromNumber canonicalizes a numeric displacement. Zero means no
// displacement and maps to Electric.
func EngineSizeFromNumber(f float64) string {
	if !stats.IsFinite(f) {
		return EngineUnknown
	}
	if f == 0 {
		return EngineElectric
	}
	return CanonicalFloat(f)
}

// CanonicalFloat formats f with the shortest exact digits and always keeps
// a fractional part: 3 -> "3.0", 3.50 -> "3.5".
func CanonicalFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func engineSizeText(s string) string {
	s = strings.TrimSpace(s)
	if IsMissingToken(s) {
		return EngineUnknown
	}

	if strings.Contains(strings.ToLower(s), "electric") {
		// "1.5 + Electric"
		if strings.Contains(s, "+") {
			return EngineHybrid
		}
		return EngineElectric
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && stats.IsFinite(f) {
		return EngineSizeFromNumber(f)
	}
	return s
}

// Text cleans a free-text categorical field such as make or model.
// Blank input becomes Unknown.
func Text(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unknown
	}
	return s
}
