// Package normalize turns heterogeneous raw attribute values into clean
// numeric and categorical tokens.
//
// Every function here is total: unparseable input degrades to a missing
// outcome or a fallback token, never an error. The functions hold no state
// and are safe for concurrent use.
package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"carprice/pkg/stats"
)

// numberPattern matches the first contiguous decimal number in a token.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d*)?|\.\d+`)

// missingTokens are compared after trimming and lowercasing.
var missingTokens = map[string]struct{}{
	"-":   {},
	"n/a": {},
	"na":  {},
	"nan": {},
}

// Value is the outcome of normalizing one numeric token.
// A missing Value is resolved later against its column's median.
type Value struct {
	Float   float64
	Missing bool
}

// Present wraps a parsed float. Non-finite input is reported as missing.
func Present(f float64) Value {
	if !stats.IsFinite(f) {
		return Missing()
	}
	return Value{Float: f}
}

// Missing returns the missing sentinel.
func Missing() Value {
	return Value{Missing: true}
}

// IsMissingToken reports whether s is blank or one of the literal
// missing markers (-, N/A, NA, na, n/a, nan) in any case.
func IsMissingToken(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := missingTokens[strings.ToLower(s)]
	return ok
}

// Numeric normalizes a raw numeric attribute. raw may be nil, a Go number,
// a json.Number or text carrying noise such as "1,000", "1000+", "< 1.9".
func Numeric(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Missing()
	case string:
		return numericText(v)
	case float64:
		return Present(v)
	case float32:
		return Present(float64(v))
	case int:
		return Present(float64(v))
	case int64:
		return Present(float64(v))
	case int32:
		return Present(float64(v))
	case json.Number:
		return numericText(v.String())
	default:
		return Missing()
	}
}

// Price normalizes a raw price. Currency symbols and quote characters are
// stripped before the same extraction Numeric applies.
func Price(raw any) Value {
	s, ok := raw.(string)
	if !ok {
		return Numeric(raw)
	}
	s = strings.NewReplacer("$", "", `"`, "", "'", "").Replace(s)
	return numericText(s)
}

func numericText(s string) Value {
	s = strings.TrimSpace(s)
	if IsMissingToken(s) {
		return Missing()
	}

	// Order matters: qualifier, comparison marker, separators, extraction.
	s = strings.TrimSpace(strings.TrimRight(s, "+"))
	s = strings.TrimSpace(strings.TrimLeft(s, "<>"))
	s = strings.ReplaceAll(s, ",", "")

	if m := numberPattern.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return Present(f)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing()
	}
	return Present(f)
}
