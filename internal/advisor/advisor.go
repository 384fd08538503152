package advisor

// #region imports
import (
	"math"
	"strings"
)

// #endregion

// #region types

// Inputs are the resolved values the rule table runs on. Moisture is the
// qualitative bucket ("low" / "medium" / "high"), already overridden by
// enrichment bucketing when a numeric soil-moisture reading was available.
type Inputs struct {
	AreaAcres float64
	SoilType  string
	PH        float64
	Moisture  string
}

// Recommendation is the rule table's output for one set of inputs.
type Recommendation struct {
	Crop           string
	Reason         string
	Confidence     string // "low" | "medium" | "high"
	EstimatedCosts map[string]float64
}

// #endregion types

// #region moisture-bucket

// Moisture bucket thresholds for numeric soil-moisture readings.
// Inclusive lower bound, exclusive upper bound per bucket.
const (
	MoistureLowBelow    = 0.15
	MoistureMediumBelow = 0.35
)

// BucketMoisture maps a numeric soil-moisture reading to its
// qualitative bucket.
func BucketMoisture(sm float64) string {
	switch {
	case sm < MoistureLowBelow:
		return "low"
	case sm < MoistureMediumBelow:
		return "medium"
	default:
		return "high"
	}
}

// #endregion moisture-bucket

// #region soil-aliases

// soilAliases maps canonical soil keys to substrings that select them.
// Order matters: first match wins.
var soilAliases = []struct {
	key     string
	matches []string
}{
	{"clay", []string{"clay"}},
	{"loam", []string{"loam"}},
	{"sandy", []string{"sand", "sandy"}},
	{"silty", []string{"silt", "silty"}},
	{"peaty", []string{"peat", "peaty"}},
	{"chalky", []string{"chalk", "chalky"}},
}

// canonicalSoil resolves free-text soil input to a canonical soil key,
// or "unknown" when nothing matches.
func canonicalSoil(raw string) string {
	soil := strings.ToLower(raw)
	for _, a := range soilAliases {
		for _, m := range a.matches {
			if strings.Contains(soil, m) {
				return a.key
			}
		}
	}
	return "unknown"
}

// #endregion soil-aliases

// #region recommend

// Recommend runs the deterministic crop rule table. Stateless: the same
// inputs always produce the same recommendation.
func Recommend(in Inputs) Recommendation {
	soil := canonicalSoil(in.SoilType)
	ph := in.PH
	moisture := strings.ToLower(in.Moisture)
	if moisture == "" {
		moisture = "medium"
	}
	area := in.AreaAcres
	if area == 0 {
		area = 1
	}

	moist := moisture == "medium" || moisture == "high"

	switch soil {
	case "clay", "loam":
		if ph >= 5.5 && ph <= 7.5 && moist {
			return rec("Maize",
				"Loamy/clay soil with near-neutral pH and sufficient moisture suits maize.",
				"high", costs(area, 1000, 800))
		}
		if moisture == "low" {
			return rec("Pulses (e.g., Pigeon pea)",
				"Drier conditions favor drought-tolerant pulses.",
				"medium", costs(area, 700, 400))
		}
		return rec("Maize",
			"General good fit for loamy/clay soils.",
			"medium", costs(area, 1000, 0))

	case "sandy":
		if moisture == "low" && ph >= 5.5 && ph <= 7.0 {
			return rec("Millet",
				"Sandy + low moisture favors millet.",
				"high", costs(area, 600, 400))
		}
		if moist && ph >= 5.5 && ph <= 7.5 {
			return rec("Groundnut",
				"Groundnut performs well in sandy soils with moderate moisture.",
				"medium", costs(area, 700, 500))
		}
		return rec("Millet",
			"Conservative choice for sandy when uncertain.",
			"medium", costs(area, 650, 0))

	case "silty":
		if ph >= 6.0 && ph <= 7.5 && moist {
			return rec("Wheat",
				"Silty + moist + near-neutral pH suits wheat.",
				"high", costs(area, 1200, 900))
		}
		return rec("Barley",
			"Barley tolerates variable silty conditions.",
			"medium", costs(area, 1100, 850))

	case "peaty":
		if moisture == "high" {
			return rec("Rice",
				"Peaty soils retain water — rice is well suited.",
				"high", costs(area, 1300, 1000))
		}
		return rec("Maize",
			"Peaty but drier -> maize possible.",
			"medium", costs(area, 1000, 0))

	case "chalky":
		if ph > 7.0 && moist {
			return rec("Sugarcane",
				"Alkaline chalky soils with moisture suit sugarcane.",
				"medium", costs(area, 1400, 1100))
		}
		return rec("Wheat",
			"Wheat tolerates chalky conditions.",
			"low", costs(area, 1200, 900))

	default:
		if moisture == "low" {
			return rec("Millet",
				"Default drought-tolerant choice when soil unknown.",
				"medium", costs(area, 700, 0))
		}
		if moist && ph >= 6.0 && ph <= 7.5 {
			return rec("Maize",
				"General-purpose choice for neutral pH and adequate moisture.",
				"medium", costs(area, 1000, 0))
		}
		return rec("Maize",
			"Fallback recommendation.",
			"low", costs(area, 1000, 0))
	}
}

// #endregion recommend

// #region helpers

func rec(crop, reason, confidence string, costs map[string]float64) Recommendation {
	return Recommendation{Crop: crop, Reason: reason, Confidence: confidence, EstimatedCosts: costs}
}

// costs builds the per-acre cost estimate. fertilizerRate of 0 means the
// branch quotes seeds only.
func costs(area, seedRate, fertilizerRate float64) map[string]float64 {
	out := map[string]float64{"seeds": round2(seedRate * area)}
	if fertilizerRate > 0 {
		out["fertilizers"] = round2(fertilizerRate * area)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// #endregion helpers
