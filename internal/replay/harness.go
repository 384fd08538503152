package replay

// #region imports
import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/agroplan/crop-advisor/go-agent/internal/advisor"
	"github.com/agroplan/crop-advisor/go-agent/internal/agro"
	"github.com/agroplan/crop-advisor/go-agent/internal/dialogue"
	"github.com/agroplan/crop-advisor/go-agent/internal/session"
)

// #endregion

// #region stub-gateway

// StubGateway serves canned observations and counts calls, so scenarios
// replay without a live Agromonitoring connection.
type StubGateway struct {
	Soil    agro.Observation
	Weather agro.Observation

	SoilCalls       int
	WeatherCalls    int
	CoordinateCalls int
}

func (g *StubGateway) GetSoil(ctx context.Context, polyID string) (agro.Observation, error) {
	g.SoilCalls++
	return g.Soil, nil
}

func (g *StubGateway) GetWeather(ctx context.Context, polyID string) (agro.Observation, error) {
	g.WeatherCalls++
	return g.Weather, nil
}

func (g *StubGateway) FetchByCoordinate(ctx context.Context, lat, lon float64, cleanup bool) (*agro.FetchResult, error) {
	g.CoordinateCalls++
	return &agro.FetchResult{
		PolygonID: "replay-polygon",
		Soil:      g.Soil,
		Weather:   g.Weather,
	}, nil
}

// #endregion stub-gateway

// #region result

// Result captures one replay run.
type Result struct {
	Questions []string
	Final     *advisor.FinalResult

	// Deterministic reports whether submitting the same answers a second
	// time reproduced the identical final result.
	Deterministic bool

	Gateway *StubGateway
}

// #endregion result

// #region replay

// Replay runs a scenario through a fresh controller: query → follow-up
// answers → final, then submits the same answers again and checks the
// outcome is reproduced. Operates entirely in-memory.
func Replay(ctx context.Context, f *Fixture) (*Result, error) {
	gw := &StubGateway{Soil: f.Soil, Weather: f.Weather}
	ctrl := dialogue.NewController(session.NewState(), gw, nil)

	res := &Result{Gateway: gw}

	first := ctrl.HandleUserInput(ctx, f.Query)
	switch first.Type {
	case "followup":
		res.Questions = first.Questions
		second := ctrl.ProvideFollowupAnswers(ctx, f.Answers)
		if second.Type != "final" {
			return nil, fmt.Errorf("replay: expected final after answers, got %q (questions: %v)",
				second.Type, second.Questions)
		}
		res.Final = second.Final
	case "final":
		res.Final = first.Final
	default:
		return nil, fmt.Errorf("replay: unexpected response type %q", first.Type)
	}

	// Re-entry check: same answers must overwrite in place and reproduce
	// the identical result.
	again := ctrl.ProvideFollowupAnswers(ctx, f.Answers)
	res.Deterministic = again.Type == "final" && reflect.DeepEqual(again.Final, res.Final)

	return res, nil
}

// #endregion replay

// #region verify

// Verify diffs a replay result against the fixture's expectations and
// returns one message per mismatch. Empty means pass.
func Verify(f *Fixture, res *Result) []string {
	var mismatches []string

	if f.Expected.Questions > 0 && len(res.Questions) != f.Expected.Questions {
		mismatches = append(mismatches, fmt.Sprintf(
			"questions: got %d, want %d", len(res.Questions), f.Expected.Questions))
	}
	if res.Final == nil {
		mismatches = append(mismatches, "no final result produced")
		return mismatches
	}
	if f.Expected.Crop != "" && !strings.Contains(res.Final.Recommendation, f.Expected.Crop) {
		mismatches = append(mismatches, fmt.Sprintf(
			"crop: recommendation %q does not mention %q", res.Final.Recommendation, f.Expected.Crop))
	}
	if f.Expected.Confidence != "" && !strings.Contains(res.Final.Recommendation, "confidence: "+f.Expected.Confidence) {
		mismatches = append(mismatches, fmt.Sprintf(
			"confidence: recommendation %q does not carry %q", res.Final.Recommendation, f.Expected.Confidence))
	}
	if !res.Deterministic {
		mismatches = append(mismatches, "re-submitting answers changed the final result")
	}

	return mismatches
}

// #endregion verify
