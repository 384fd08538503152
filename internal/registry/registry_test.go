package registry

import (
	"testing"
)

func TestFieldToQuestion_KnownFields(t *testing.T) {
	tests := []struct {
		field FieldKey
		want  string
	}{
		{FieldAreaAcres, "Area in acres (e.g., 2)"},
		{FieldPH, "Soil pH (e.g., 6.5)"},
		{FieldMoisture, "Moisture level (low / medium / high)"},
	}
	for _, tt := range tests {
		if got := FieldToQuestion(tt.field); got != tt.want {
			t.Errorf("FieldToQuestion(%s): got %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestFieldToQuestion_Total(t *testing.T) {
	// Keys without a template still get a usable prompt.
	got := FieldToQuestion(FieldSoilMoisture)
	if got != "Please provide soil moisture" {
		t.Errorf("got %q", got)
	}
	if FieldToQuestion(FieldKey("anything_else")) == "" {
		t.Error("expected non-empty prompt for unknown key")
	}
}

func TestQuestionToField_Bijective(t *testing.T) {
	// Every canonical key must round-trip through its question.
	for _, field := range CanonicalFields() {
		q := FieldToQuestion(field)
		got, ok := QuestionToField(q)
		if !ok {
			t.Errorf("QuestionToField(%q): no mapping", q)
			continue
		}
		if got != field {
			t.Errorf("round-trip %s: got %s", field, got)
		}
	}
}

func TestQuestionToField_Heuristics(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     FieldKey
		wantOK   bool
	}{
		{"exact-case-insensitive", "  AREA IN ACRES (E.G., 2) ", FieldAreaAcres, true},
		{"paraphrased-area", "What is the field area?", FieldAreaAcres, true},
		{"paraphrased-soil", "Which soil type do you have?", FieldSoilType, true},
		{"ph-mixed-case", "What's the soil pH?", FieldPH, true},
		{"moisture", "How much moisture is there?", FieldMoisture, true},
		{"lat-lon", "Give me the lat and lon", FieldLocation, true},
		{"unmapped", "Favorite color?", "", false},
		{"empty", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := QuestionToField(tt.question)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("field: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		question string
		want     FieldKey
	}{
		{"Favorite color?", "favorite_color?"},
		{"Moisture level (low / medium / high)", "moisture_level_low___medium___high"},
		{"  Multiple   Spaces Here ", "multiple_spaces_here"},
		{"a, b, c", "a_b_c"},
	}
	for _, tt := range tests {
		if got := DeriveKey(tt.question); got != tt.want {
			t.Errorf("DeriveKey(%q): got %q, want %q", tt.question, got, tt.want)
		}
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey("Some Question Text")
	b := DeriveKey("some   question text")
	if a != b {
		t.Errorf("expected identical keys, got %q and %q", a, b)
	}
}

func TestIsCanonical(t *testing.T) {
	if !IsCanonical(FieldPolygonID) {
		t.Error("polygon_id should be canonical")
	}
	if IsCanonical(FieldKey("favorite_color")) {
		t.Error("derived key should not be canonical")
	}
}
