package session

// #region imports
import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agroplan/crop-advisor/go-agent/internal/advisor"
	"github.com/agroplan/crop-advisor/go-agent/internal/agro"
	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
)

// #endregion

// #region event

// Event is one append-only trace entry. Write-only from the dialogue
// controller's perspective; the inspect tool and the presentation layer
// read it.
type Event struct {
	At      time.Time
	Message string
}

// String renders the entry the way the event log surfaces it.
func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.At.Format("15:04:05"), e.Message)
}

// #endregion event

// #region state

// State is the mutable store for one conversation. Single-writer: the
// owning controller mutates it synchronously per turn, no locking.
type State struct {
	ID           string
	Known        map[registry.FieldKey]answer.Value
	Pending      []string
	Events       []Event
	LastUserText string
	LastResult   *advisor.FinalResult
	LastPolygon  *agro.Polygon
}

// NewState creates an empty session with a fresh identifier.
func NewState() *State {
	return &State{
		ID:    uuid.New().String(),
		Known: make(map[registry.FieldKey]answer.Value),
	}
}

// Set stores a field value, overwriting any prior value (last-write-wins).
func (s *State) Set(key registry.FieldKey, v answer.Value) {
	s.Known[key] = v
}

// Get reads a field value.
func (s *State) Get(key registry.FieldKey) (answer.Value, bool) {
	v, ok := s.Known[key]
	return v, ok
}

// Has reports whether a field is known.
func (s *State) Has(key registry.FieldKey) bool {
	_, ok := s.Known[key]
	return ok
}

// Trace appends a timestamped entry to the event log and returns it.
func (s *State) Trace(format string, args ...any) Event {
	ev := Event{At: time.Now(), Message: fmt.Sprintf(format, args...)}
	s.Events = append(s.Events, ev)
	return ev
}

// LogLines renders the full event log for the presentation boundary.
func (s *State) LogLines() []string {
	out := make([]string, len(s.Events))
	for i, ev := range s.Events {
		out[i] = ev.String()
	}
	return out
}

// #endregion state
