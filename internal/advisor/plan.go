package advisor

// #region imports
import (
	"fmt"
	"strconv"
)

// #endregion

// #region types

// ActionStep is one stage of the grower's action plan.
type ActionStep struct {
	Task  string `json:"task"`
	Weeks int    `json:"weeks"`
	Notes string `json:"notes"`
}

// FinalResult is the outcome handed across the presentation boundary.
type FinalResult struct {
	Recommendation string             `json:"recommendation"`
	Plan           []ActionStep       `json:"plan"`
	Costs          map[string]float64 `json:"costs"`
	Rationale      string             `json:"rationale"`
}

// #endregion types

// #region build-action-plan

// BuildActionPlan lays out the staged work for the recommended crop.
// Recomputed on every finalize, never stored.
func BuildActionPlan(in Inputs, r Recommendation) []ActionStep {
	area := in.AreaAcres
	if area == 0 {
		area = 1
	}
	crop := r.Crop
	if crop == "" {
		crop = "Unknown"
	}

	return []ActionStep{
		{
			Task:  fmt.Sprintf("Land preparation and seed purchase for %s on %s acres", crop, formatArea(area)),
			Weeks: 1,
			Notes: "Prepare field, buy certified seeds.",
		},
		{
			Task:  fmt.Sprintf("Sowing and initial fertilizer application for %s", crop),
			Weeks: 2,
			Notes: "Sow seeds at recommended spacing. Apply basal fertilizer.",
		},
		{
			Task:  fmt.Sprintf("Crop maintenance and harvest planning for %s", crop),
			Weeks: 10,
			Notes: "Irrigation as needed, pest checks, harvesting timeline planning.",
		},
	}
}

// Finalize assembles the boundary result from a recommendation.
func Finalize(in Inputs, r Recommendation) FinalResult {
	return FinalResult{
		Recommendation: fmt.Sprintf("Recommended crop: %s (confidence: %s)", r.Crop, r.Confidence),
		Plan:           BuildActionPlan(in, r),
		Costs:          r.EstimatedCosts,
		Rationale:      r.Reason,
	}
}

func formatArea(area float64) string {
	return strconv.FormatFloat(area, 'g', -1, 64)
}

// #endregion build-action-plan
