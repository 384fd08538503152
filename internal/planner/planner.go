package planner

// #region imports
import (
	"strings"

	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
)

// #endregion

// #region step

// Step is one stage of work and the field keys it needs before it can run.
type Step struct {
	Name     string
	Requires []registry.FieldKey
}

// String renders a step for trace entries.
func (s Step) String() string {
	parts := make([]string, len(s.Requires))
	for i, f := range s.Requires {
		parts[i] = string(f)
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// #endregion step

// #region build-plan

// BuildPlan derives the required-field plan from the user's query.
// Soil type, pH, moisture and location are always collected; area is
// collected only when the query mentions it, otherwise a one-acre default
// applies at execution time. Later steps re-list their inputs so the
// resolver's dedup is exercised on every pass.
func BuildPlan(text string) []Step {
	txt := strings.ToLower(text)

	var collect []registry.FieldKey
	if strings.Contains(txt, "acre") || strings.Contains(txt, "area") {
		collect = append(collect, registry.FieldAreaAcres)
	}
	collect = append(collect,
		registry.FieldSoilType,
		registry.FieldPH,
		registry.FieldMoisture,
		registry.FieldLocation,
	)

	return []Step{
		{Name: "collect_info", Requires: collect},
		{Name: "recommend_crop", Requires: []registry.FieldKey{
			registry.FieldSoilType, registry.FieldPH, registry.FieldMoisture,
		}},
		{Name: "build_plan"},
	}
}

// #endregion build-plan

// #region missing-questions

// MissingQuestions diffs a plan against the known-field set and returns
// the outstanding questions, deduplicated by normalized question text in
// first-seen order. Pure: no state is touched. Empty output means every
// field the plan references is known.
func MissingQuestions(plan []Step, known map[registry.FieldKey]answer.Value) []string {
	if len(plan) == 0 {
		panic("planner: empty plan")
	}

	var out []string
	seen := make(map[string]bool)
	for _, step := range plan {
		for _, field := range step.Requires {
			if _, ok := known[field]; ok {
				continue
			}
			q := registry.FieldToQuestion(field)
			norm := registry.Normalize(q)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			out = append(out, q)
		}
	}
	return out
}

// #endregion missing-questions
