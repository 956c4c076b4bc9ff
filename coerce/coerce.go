// Package coerce implements the field-level type coercion engine: parsing a
// raw column value into its declared typed value, and formatting a typed
// value back into column text. All functions are pure and safe for
// concurrent use against a shared schema.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ferrors "github.com/c360/flatfile/errors"
	"github.com/c360/flatfile/schema"
)

// Default boolean literal sets. Immutable; matching is case-insensitive.
// A field-level TrueToken or FalseToken replaces the corresponding set with
// that single token.
var (
	defaultTrueTokens  = []string{"true", "1", "y", "yes"}
	defaultFalseTokens = []string{"false", "0", "n", "no"}
)

// Default boolean output tokens for the format direction.
const (
	defaultTrueOut  = "1"
	defaultFalseOut = "0"
)

// CoercionError reports a failed coercion attempt. It carries the attempted
// type and the offending raw text so callers can build diagnostics without
// re-parsing anything.
type CoercionError struct {
	Type   schema.FieldType
	Raw    string
	Reason string
	cause  error
}

// Error implements the error interface.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s: %s", e.Raw, e.Type, e.Reason)
}

// Unwrap lets CoercionError participate in errors.Is chains; every coercion
// failure matches errors.ErrParsingFailed.
func (e *CoercionError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ferrors.ErrParsingFailed
}

func coercionErr(t schema.FieldType, raw, reason string) *CoercionError {
	return &CoercionError{Type: t, Raw: raw, Reason: reason}
}

// Parse trims raw and converts it to the typed value declared by the field.
// Returned value types: Text→string, Integer→int64, Decimal→float64 rounded
// to the field's scale, Date→time.Time in UTC, Boolean→bool. A failure is
// always a *CoercionError, never a panic.
func Parse(raw string, f schema.Field) (any, error) {
	v := strings.TrimSpace(raw)

	switch f.Type {
	case schema.Text:
		// Empty text is a valid value, not an error.
		return v, nil
	case schema.Integer:
		return parseInteger(v)
	case schema.Decimal:
		return parseDecimal(v, f.Places())
	case schema.Date:
		return parseDate(v, f.DateFormat)
	case schema.Boolean:
		return parseBoolean(v, f)
	default:
		return nil, coercionErr(f.Type, v, "unsupported field type")
	}
}

func parseInteger(v string) (int64, error) {
	if v == "" {
		return 0, coercionErr(schema.Integer, v, "empty value")
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	// Accept any numeric text and round to the nearest whole number,
	// half away from zero.
	fv, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(fv) || math.IsInf(fv, 0) {
		return 0, coercionErr(schema.Integer, v, "not a number")
	}
	return int64(math.Round(fv)), nil
}

func parseDecimal(v string, places int) (float64, error) {
	if v == "" {
		return 0, coercionErr(schema.Decimal, v, "empty value")
	}
	fv, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(fv) || math.IsInf(fv, 0) {
		return 0, coercionErr(schema.Decimal, v, "not a number")
	}
	return roundTo(fv, places), nil
}

// roundTo rounds half away from zero to the given decimal scale.
func roundTo(v float64, places int) float64 {
	pow := math.Pow10(places)
	return math.Round(v*pow) / pow
}

func parseBoolean(v string, f schema.Field) (bool, error) {
	if v == "" {
		return false, coercionErr(schema.Boolean, v, "empty value")
	}

	trueTokens := defaultTrueTokens
	if f.TrueToken != "" {
		trueTokens = []string{f.TrueToken}
	}
	falseTokens := defaultFalseTokens
	if f.FalseToken != "" {
		falseTokens = []string{f.FalseToken}
	}

	for _, tok := range trueTokens {
		if strings.EqualFold(v, tok) {
			return true, nil
		}
	}
	for _, tok := range falseTokens {
		if strings.EqualFold(v, tok) {
			return false, nil
		}
	}
	return false, coercionErr(schema.Boolean, v, "unrecognized boolean token")
}

// Format renders a typed value back into column text, the inverse of Parse.
// A nil value renders as the empty string for every type, unconditionally.
// Format never fails: a value of an unexpected dynamic type degrades to the
// empty string rather than signaling an error.
func Format(value any, f schema.Field) string {
	if value == nil {
		return ""
	}

	switch f.Type {
	case schema.Text:
		if s, ok := value.(string); ok {
			return s
		}
		return fmt.Sprint(value)
	case schema.Integer:
		n, ok := toFloat(value)
		if !ok {
			return ""
		}
		return strconv.FormatInt(int64(math.Round(n)), 10)
	case schema.Decimal:
		n, ok := toFloat(value)
		if !ok {
			return ""
		}
		places := f.Places()
		return strconv.FormatFloat(roundTo(n, places), 'f', places, 64)
	case schema.Date:
		t, ok := value.(time.Time)
		if !ok {
			return ""
		}
		return formatDate(t, f.DateFormat)
	case schema.Boolean:
		b, ok := value.(bool)
		if !ok {
			return ""
		}
		if b {
			if f.TrueToken != "" {
				return f.TrueToken
			}
			return defaultTrueOut
		}
		if f.FalseToken != "" {
			return f.FalseToken
		}
		return defaultFalseOut
	default:
		return ""
	}
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
