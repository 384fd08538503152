package dialogue

// #region imports
import (
	"context"
	"log"
	"sort"

	"github.com/agroplan/crop-advisor/go-agent/internal/advisor"
	"github.com/agroplan/crop-advisor/go-agent/internal/agro"
	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/planner"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
	"github.com/agroplan/crop-advisor/go-agent/internal/session"
)

// #endregion

// #region phase

// Phase is the controller's position in the conversation state machine.
type Phase string

const (
	PhaseAwaitingInput   Phase = "awaiting_input"
	PhasePlanning        Phase = "planning"
	PhaseAwaitingAnswers Phase = "awaiting_answers"
	PhaseFinalized       Phase = "finalized"
)

// #endregion phase

// #region gateway

// Gateway abstracts the enrichment calls so the controller can be tested
// without a live Agromonitoring connection. All failures are non-fatal:
// absence of data means enrichment-derived fields stay unset and defaults
// apply downstream.
type Gateway interface {
	GetSoil(ctx context.Context, polyID string) (agro.Observation, error)
	GetWeather(ctx context.Context, polyID string) (agro.Observation, error)
	FetchByCoordinate(ctx context.Context, lat, lon float64, cleanup bool) (*agro.FetchResult, error)
}

// #endregion gateway

// #region response

// Response is what a turn hands across the presentation boundary.
type Response struct {
	Type      string               `json:"type"` // "followup" | "final"
	Questions []string             `json:"questions,omitempty"`
	Final     *advisor.FinalResult `json:"final,omitempty"`
	Logs      []string             `json:"logs"`
}

// #endregion response

// #region controller

// Controller owns one conversation: it derives the required-field plan,
// asks what is missing, merges answers and enrichment data, and re-runs
// the decision procedure whenever state changes. Single-writer,
// synchronous per turn.
type Controller struct {
	state   *session.State
	gateway Gateway
	store   *session.Store
	phase   Phase
}

// NewController wires a controller around a session. gateway may be nil
// (no enrichment); store may be nil (memory-only, no external observers).
func NewController(st *session.State, gateway Gateway, store *session.Store) *Controller {
	if st == nil {
		st = session.NewState()
	}
	c := &Controller{
		state:   st,
		gateway: gateway,
		store:   store,
		phase:   PhaseAwaitingInput,
	}
	if store != nil {
		if err := store.EnsureSession(st.ID); err != nil {
			log.Printf("[DIALOG] store error: %v", err)
		}
	}
	return c
}

// Phase returns the controller's current state-machine phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// State exposes the owned session state for observers.
func (c *Controller) State() *session.State {
	return c.state
}

// #endregion controller

// #region handle-user-input

// HandleUserInput starts (or restarts) a conversation turn from free
// text. Returns either the outstanding follow-up questions or the final
// result when everything required is already known.
func (c *Controller) HandleUserInput(ctx context.Context, text string) Response {
	c.state.LastUserText = text
	if c.store != nil {
		if err := c.store.SaveUserText(c.state.ID, text); err != nil {
			log.Printf("[DIALOG] store error: %v", err)
		}
	}
	c.trace("Received user query: %s", text)

	return c.replan(ctx)
}

// replan recomputes the plan from the last user text and either surfaces
// follow-up questions or finalizes. Idempotent: calling it again with
// unchanged state yields the same outcome.
func (c *Controller) replan(ctx context.Context) Response {
	c.phase = PhasePlanning

	plan := planner.BuildPlan(c.state.LastUserText)
	c.trace("Planner steps: %v", plan)

	missing := planner.MissingQuestions(plan, c.state.Known)
	if len(missing) > 0 {
		c.state.Pending = missing
		c.trace("Missing fields: %v", missing)
		c.phase = PhaseAwaitingAnswers
		return Response{Type: "followup", Questions: missing, Logs: c.state.LogLines()}
	}

	c.state.Pending = nil
	final := c.finalize()
	return Response{Type: "final", Final: final, Logs: c.state.LogLines()}
}

// #endregion handle-user-input

// #region provide-followup-answers

// ProvideFollowupAnswers merges answers keyed by question text, runs
// location classification and enrichment, then recomputes from the last
// user text. Safe to call repeatedly with the same mapping: matching keys
// are simply overwritten.
func (c *Controller) ProvideFollowupAnswers(ctx context.Context, answers map[string]any) Response {
	// Questions are processed in sorted order so trace order and
	// last-write-wins for duplicate field resolutions are deterministic.
	questions := make([]string, 0, len(answers))
	for question := range answers {
		questions = append(questions, question)
	}
	sort.Strings(questions)

	for _, question := range questions {
		field, ok := registry.QuestionToField(question)
		if !ok {
			field = registry.DeriveKey(question)
		}
		val := answer.Coerce(field, answers[question])
		c.setField(field, val)
		c.trace("Stored %s = %s", field, val)
	}

	c.classifyLocation(ctx)
	c.fetchForPolygon(ctx)

	return c.replan(ctx)
}

// #endregion provide-followup-answers

// #region location-classification

// classifyLocation interprets a stored location answer: a polygon
// identifier is copied under its own key, a lat,lon pair triggers a
// coordinate-based fetch, and anything else stays plain text.
func (c *Controller) classifyLocation(ctx context.Context) {
	loc, ok := c.state.Get(registry.FieldLocation)
	if !ok || loc.Kind != answer.KindText {
		return
	}

	class, coord, err := answer.ClassifyLocation(loc.Text)
	if err != nil {
		c.trace("Bad location format: %s -> %v", loc.Text, err)
		return
	}

	switch class {
	case answer.LocationPolygonID:
		c.setField(registry.FieldPolygonID, answer.Text(loc.Text))
		c.trace("Interpreting location as polygon id: %s", loc.Text)

	case answer.LocationCoordinates:
		if c.gateway == nil {
			return
		}
		res, err := c.gateway.FetchByCoordinate(ctx, coord.Lat, coord.Lon, true)
		if err != nil {
			c.trace("Agro fetch for lat,lon failed: %v", err)
			return
		}
		c.trace("Agro fetched for lat,lon: %v", res != nil)
		if res != nil {
			c.state.LastPolygon = &agro.Polygon{ID: res.PolygonID}
			c.mergeObservations(res.Soil, res.Weather)
		}
	}
}

// fetchForPolygon pulls soil and weather when a polygon id is known,
// whether it came from location classification or an earlier enrichment.
func (c *Controller) fetchForPolygon(ctx context.Context) {
	pid, ok := c.state.Get(registry.FieldPolygonID)
	if !ok || pid.Text == "" || c.gateway == nil {
		return
	}

	soil, err := c.gateway.GetSoil(ctx, pid.Text)
	if err != nil {
		c.trace("Soil fetch failed: %v", err)
	}
	weather, err := c.gateway.GetWeather(ctx, pid.Text)
	if err != nil {
		c.trace("Weather fetch failed: %v", err)
	}
	c.mergeObservations(soil, weather)
}

// #endregion location-classification

// #region merge

// mergeObservations copies known readings out of soil/weather payloads
// into session state. Absent or malformed entries are skipped; the merge
// only ever widens the known-field set.
func (c *Controller) mergeObservations(soil, weather agro.Observation) {
	if soil == nil && weather == nil {
		return
	}

	if soil != nil {
		c.mergeReading(registry.FieldSoilMoisture, soil["soil_moisture"])
		c.mergeReading(registry.FieldSoilTemp, soil["soil_temp"])
	}
	if weather != nil {
		c.mergeVerbatim(registry.FieldPrecipitation, weather["rain"])
		c.mergeVerbatim(registry.FieldWeatherTemp, weather["temperature"])
		c.mergeVerbatim(registry.FieldWeatherTimestamp, weather["ts"])
	}
	c.trace("Stored agro payloads into memory.")
}

// mergeReading stores one soil entry, numeric when it coerces, raw text
// otherwise. Nil entries are skipped.
func (c *Controller) mergeReading(key registry.FieldKey, raw any) {
	if raw == nil {
		return
	}
	c.setField(key, answer.Coerce(key, raw))
}

// mergeVerbatim stores a weather entry as received: string payload values
// stay text even when they look numeric. Nil entries are skipped.
func (c *Controller) mergeVerbatim(key registry.FieldKey, raw any) {
	if raw == nil {
		return
	}
	if s, ok := raw.(string); ok {
		c.setField(key, answer.Text(s))
		return
	}
	c.setField(key, answer.Coerce(key, raw))
}

// #endregion merge

// #region finalize

// Defaults applied when fields remain unresolved at finalize time.
const (
	defaultArea     = 1.0
	defaultSoilType = "clay"
	defaultPH       = 6.5
	defaultMoisture = "medium"
)

// finalize resolves inputs (with defaults), applies the soil-moisture
// override, runs the rule table, and caches the result for idempotent
// re-reads.
func (c *Controller) finalize() *advisor.FinalResult {
	in := advisor.Inputs{
		AreaAcres: c.floatField(registry.FieldAreaAcres, defaultArea),
		SoilType:  c.textField(registry.FieldSoilType, defaultSoilType),
		PH:        c.floatField(registry.FieldPH, defaultPH),
		Moisture:  c.textField(registry.FieldMoisture, defaultMoisture),
	}

	// A numeric enrichment reading overrides the qualitative answer.
	if sm, ok := c.state.Get(registry.FieldSoilMoisture); ok {
		if f, ok := sm.Float(); ok {
			in.Moisture = advisor.BucketMoisture(f)
			c.trace("agro soil_moisture=%v -> moisture=%s", f, in.Moisture)
		}
	}

	c.trace("Using inputs: %+v", in)
	r := advisor.Recommend(in)
	c.trace("Crop tool returned: %s (%s)", r.Crop, r.Confidence)

	final := advisor.Finalize(in, r)
	c.state.LastResult = &final
	c.phase = PhaseFinalized
	c.trace("Execution completed.")
	return &final
}

func (c *Controller) floatField(key registry.FieldKey, fallback float64) float64 {
	if v, ok := c.state.Get(key); ok {
		if f, ok := v.Float(); ok {
			return f
		}
	}
	return fallback
}

func (c *Controller) textField(key registry.FieldKey, fallback string) string {
	if v, ok := c.state.Get(key); ok && v.String() != "" {
		return v.String()
	}
	return fallback
}

// #endregion finalize

// #region helpers

// setField writes a field to state and mirrors it into the store.
func (c *Controller) setField(key registry.FieldKey, v answer.Value) {
	c.state.Set(key, v)
	if c.store != nil {
		if err := c.store.SaveField(c.state.ID, key, v); err != nil {
			log.Printf("[DIALOG] store error: %v", err)
		}
	}
}

// trace appends to the session event log and mirrors it into the store.
func (c *Controller) trace(format string, args ...any) {
	ev := c.state.Trace(format, args...)
	if c.store != nil {
		if err := c.store.AppendEvent(c.state.ID, ev); err != nil {
			log.Printf("[DIALOG] store error: %v", err)
		}
	}
}

// #endregion helpers
