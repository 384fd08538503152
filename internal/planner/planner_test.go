package planner

import (
	"testing"

	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
)

func known(fields ...registry.FieldKey) map[registry.FieldKey]answer.Value {
	m := make(map[registry.FieldKey]answer.Value)
	for _, f := range fields {
		m[f] = answer.Text("x")
	}
	return m
}

func TestBuildPlan_AreaConditional(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantArea bool
	}{
		{"mentions-acres", "What should I plant on 2 acres?", true},
		{"mentions-area", "My area is small, what crop?", true},
		{"no-mention", "What should I grow?", false},
		{"case-insensitive", "I have five ACRES", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan(tt.text)
			if len(plan) == 0 {
				t.Fatal("empty plan")
			}
			hasArea := false
			for _, f := range plan[0].Requires {
				if f == registry.FieldAreaAcres {
					hasArea = true
				}
			}
			if hasArea != tt.wantArea {
				t.Errorf("area required: got %v, want %v", hasArea, tt.wantArea)
			}
		})
	}
}

func TestBuildPlan_AlwaysRequiredFields(t *testing.T) {
	plan := BuildPlan("anything")
	want := []registry.FieldKey{
		registry.FieldSoilType, registry.FieldPH,
		registry.FieldMoisture, registry.FieldLocation,
	}
	for _, f := range want {
		found := false
		for _, r := range plan[0].Requires {
			if r == f {
				found = true
			}
		}
		if !found {
			t.Errorf("field %s missing from collect step", f)
		}
	}
}

func TestMissingQuestions_Order(t *testing.T) {
	plan := BuildPlan("planting on 2 acres")
	got := MissingQuestions(plan, known())

	want := []string{
		registry.FieldToQuestion(registry.FieldAreaAcres),
		registry.FieldToQuestion(registry.FieldSoilType),
		registry.FieldToQuestion(registry.FieldPH),
		registry.FieldToQuestion(registry.FieldMoisture),
		registry.FieldToQuestion(registry.FieldLocation),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d questions, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("question %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMissingQuestions_Dedup(t *testing.T) {
	// soil_type, ph and moisture are re-listed by the recommend step;
	// each question must appear exactly once.
	plan := BuildPlan("what to grow")
	got := MissingQuestions(plan, known())

	counts := make(map[string]int)
	for _, q := range got {
		counts[q]++
	}
	for q, n := range counts {
		if n != 1 {
			t.Errorf("question %q appears %d times", q, n)
		}
	}
}

func TestMissingQuestions_Complete(t *testing.T) {
	// Every field the plan references is known → nothing outstanding.
	plan := BuildPlan("planting maize on 3 acres")
	got := MissingQuestions(plan, known(
		registry.FieldAreaAcres, registry.FieldSoilType,
		registry.FieldPH, registry.FieldMoisture, registry.FieldLocation,
	))
	if len(got) != 0 {
		t.Errorf("expected no questions, got %v", got)
	}
}

func TestMissingQuestions_Partial(t *testing.T) {
	plan := BuildPlan("planting on 2 acres")
	got := MissingQuestions(plan, known(
		registry.FieldSoilType, registry.FieldPH,
		registry.FieldMoisture, registry.FieldLocation,
	))
	if len(got) != 1 || got[0] != registry.FieldToQuestion(registry.FieldAreaAcres) {
		t.Errorf("expected only the area question, got %v", got)
	}
}

func TestMissingQuestions_Pure(t *testing.T) {
	plan := BuildPlan("what to grow")
	k := known(registry.FieldSoilType)
	before := len(k)
	MissingQuestions(plan, k)
	if len(k) != before {
		t.Error("known-field map was mutated")
	}
}

func TestMissingQuestions_EmptyPlanPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on empty plan")
		}
	}()
	MissingQuestions(nil, known())
}
