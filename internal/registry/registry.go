package registry

// #region imports
import (
	"strings"
)

// #endregion

// #region field-keys

// FieldKey identifies a structured data point in session state.
// Canonical keys form a fixed set; keys derived from unmapped question
// text (see DeriveKey) live in the same namespace but are not canonical.
type FieldKey string

const (
	FieldAreaAcres FieldKey = "area_acres"
	FieldSoilType  FieldKey = "soil_type"
	FieldPH        FieldKey = "ph"
	FieldMoisture  FieldKey = "moisture"
	FieldLocation  FieldKey = "location"

	// Enrichment-derived keys, written by the observation merge.
	FieldSoilMoisture     FieldKey = "soil_moisture"
	FieldSoilTemp         FieldKey = "soil_temp"
	FieldPrecipitation    FieldKey = "precipitation"
	FieldWeatherTemp      FieldKey = "weather_temp"
	FieldWeatherTimestamp FieldKey = "weather_timestamp"
	FieldPolygonID        FieldKey = "polygon_id"
)

// canonicalFields lists every key the decision pipeline knows about.
var canonicalFields = []FieldKey{
	FieldAreaAcres, FieldSoilType, FieldPH, FieldMoisture, FieldLocation,
	FieldSoilMoisture, FieldSoilTemp, FieldPrecipitation,
	FieldWeatherTemp, FieldWeatherTimestamp, FieldPolygonID,
}

// IsCanonical reports whether key belongs to the fixed field set.
func IsCanonical(key FieldKey) bool {
	for _, f := range canonicalFields {
		if f == key {
			return true
		}
	}
	return false
}

// CanonicalFields returns the fixed field set in declaration order.
func CanonicalFields() []FieldKey {
	out := make([]FieldKey, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}

// #endregion field-keys

// #region question-templates

const fallbackPrefix = "Please provide "

// questionTemplates maps the fields the planner asks about to their prompts.
var questionTemplates = map[FieldKey]string{
	FieldAreaAcres: "Area in acres (e.g., 2)",
	FieldSoilType:  "Soil type (e.g., clay, sandy, loam, silty, peaty, chalky)",
	FieldPH:        "Soil pH (e.g., 6.5)",
	FieldMoisture:  "Moisture level (low / medium / high)",
	FieldLocation:  "Location (lat, lon) — comma separated (e.g., 12.9716,77.5946)",
}

// #endregion question-templates

// #region field-to-question

// FieldToQuestion returns the human prompt for a field key. Total: keys
// without a template get a generic "Please provide <key>" prompt.
func FieldToQuestion(key FieldKey) string {
	if q, ok := questionTemplates[key]; ok {
		return q
	}
	return fallbackPrefix + strings.ReplaceAll(string(key), "_", " ")
}

// #endregion field-to-question

// #region question-to-field

// QuestionToField inverts FieldToQuestion. Exact match on normalized
// template text first, then the generic-prompt prefix, then substring
// heuristics. Returns ("", false) when no mapping applies; callers fall
// back to DeriveKey rather than dropping the answer.
func QuestionToField(question string) (FieldKey, bool) {
	q := Normalize(question)
	if q == "" {
		return "", false
	}

	for field, template := range questionTemplates {
		if q == Normalize(template) {
			return field, true
		}
	}

	// Generic prompts round-trip back to their key.
	if rest, ok := strings.CutPrefix(q, Normalize(fallbackPrefix)+" "); ok {
		key := FieldKey(strings.ReplaceAll(rest, " ", "_"))
		if IsCanonical(key) {
			return key, true
		}
	}

	// Heuristics for paraphrased or truncated question text.
	switch {
	case strings.Contains(q, "area"):
		return FieldAreaAcres, true
	case strings.Contains(q, "soil") && strings.Contains(q, "type"):
		return FieldSoilType, true
	case strings.Contains(q, "ph") || strings.Contains(question, "pH"):
		return FieldPH, true
	case strings.Contains(q, "moisture"):
		return FieldMoisture, true
	case strings.Contains(q, "location") ||
		(strings.Contains(q, "lat") && strings.Contains(q, "lon")):
		return FieldLocation, true
	}

	return "", false
}

// #endregion question-to-field

// #region derive-key

// DeriveKey builds a deterministic fallback key from unrecognized question
// text: lowercased, whitespace collapsed to underscores, punctuation
// stripped. Never returns an empty key for non-empty input.
func DeriveKey(question string) FieldKey {
	q := Normalize(question)
	q = strings.ReplaceAll(q, " ", "_")
	q = strings.ReplaceAll(q, "(", "")
	q = strings.ReplaceAll(q, ")", "")
	q = strings.ReplaceAll(q, "/", "_")
	q = strings.ReplaceAll(q, ",", "")
	return FieldKey(q)
}

// #endregion derive-key

// #region normalize

// Normalize folds case and collapses whitespace for text comparison.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

// #endregion normalize
