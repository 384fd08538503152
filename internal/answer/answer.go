package answer

// #region imports
import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
)

// #endregion

// #region value

// Kind discriminates the typed value stored for a field.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

// Value is the typed result of coercing a raw answer. Exactly one of
// Number/Text is meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
}

// Num builds a numeric value.
func Num(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Text builds a text value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Float returns the numeric reading of the value. Text values that parse
// as numbers are accepted, so enrichment overrides work on either kind.
func (v Value) Float() (float64, bool) {
	if v.Kind == KindNumber {
		return v.Number, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders the value for trace entries and display.
func (v Value) String() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	}
	return v.Text
}

// #endregion value

// #region coerce

// Coerce parses a raw answer into a typed value for the given field key.
// Best-effort, never fails: anything that resists the field's preferred
// type falls through the generic chain (float → int → trimmed string).
// Range validation is explicitly not done here; ph=50 passes through.
func Coerce(field registry.FieldKey, raw any) Value {
	switch field {
	case registry.FieldAreaAcres, registry.FieldPH:
		if f, ok := asFloat(raw); ok {
			return Num(f)
		}
	case registry.FieldMoisture, registry.FieldSoilType:
		return Text(strings.ToLower(strings.TrimSpace(asString(raw))))
	case registry.FieldLocation:
		return Text(strings.TrimSpace(asString(raw)))
	}
	return coerceGeneric(raw)
}

// coerceGeneric is the fallback chain for derived and unrecognized keys:
// float when the text carries a decimal point, else integer, else string.
func coerceGeneric(raw any) Value {
	if f, ok := rawNumber(raw); ok {
		return Num(f)
	}
	s := strings.TrimSpace(asString(raw))
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Num(f)
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Num(float64(n))
	}
	return Text(s)
}

// #endregion coerce

// #region raw-helpers

// rawNumber unwraps already-typed numeric input.
func rawNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// asFloat reads raw as a number, accepting numeric types and numeric text.
func asFloat(raw any) (float64, bool) {
	if f, ok := rawNumber(raw); ok {
		return f, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(asString(raw)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func asString(raw any) string {
	switch s := raw.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(raw)
	}
}

// #endregion raw-helpers
