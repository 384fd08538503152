package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/agroplan/crop-advisor/go-agent/internal/agro"
	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
	"github.com/agroplan/crop-advisor/go-agent/internal/replay"
	"github.com/agroplan/crop-advisor/go-agent/internal/session"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to advisor.db")
	sessionID := flag.String("session", "", "session to export")
	out := flag.String("out", "fixture.json", "output fixture path")
	desc := flag.String("desc", "", "fixture description")
	flag.Parse()

	if *dbPath == "" || *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db advisor.db --session id [--out fixture.json] [--desc text]")
		os.Exit(2)
	}

	store, err := session.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	st, err := store.LoadSession(*sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load session: %v\n", err)
		os.Exit(1)
	}

	fixture := buildFixture(st, *desc)
	if err := replay.SaveFixture(*out, fixture); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("exported session %s -> %s (%d answers)\n", *sessionID, *out, len(fixture.Answers))
}

// #endregion main

// #region build-fixture

// askedFields are the fields the planner collects through questions;
// their stored values become the fixture's answers.
var askedFields = []registry.FieldKey{
	registry.FieldAreaAcres,
	registry.FieldSoilType,
	registry.FieldPH,
	registry.FieldMoisture,
	registry.FieldLocation,
}

func buildFixture(st *session.State, desc string) *replay.Fixture {
	if desc == "" {
		desc = "exported session " + st.ID
	}

	answers := make(map[string]any)
	for _, field := range askedFields {
		if v, ok := st.Get(field); ok {
			answers[registry.FieldToQuestion(field)] = rawValue(v)
		}
	}

	return &replay.Fixture{
		Description: desc,
		Query:       st.LastUserText,
		Answers:     answers,
		Soil:        observationFrom(st, registry.FieldSoilMoisture, "soil_moisture", registry.FieldSoilTemp, "soil_temp"),
		Weather: observationFrom(st,
			registry.FieldPrecipitation, "rain",
			registry.FieldWeatherTemp, "temperature",
			registry.FieldWeatherTimestamp, "ts"),
	}
}

// observationFrom rebuilds a gateway payload from stored enrichment
// fields, so the exported scenario replays the same readings. Pairs are
// (stored key, payload key).
func observationFrom(st *session.State, pairs ...any) agro.Observation {
	obs := agro.Observation{}
	for i := 0; i+1 < len(pairs); i += 2 {
		field := pairs[i].(registry.FieldKey)
		payloadKey := pairs[i+1].(string)
		if v, ok := st.Get(field); ok {
			obs[payloadKey] = rawValue(v)
		}
	}
	if len(obs) == 0 {
		return nil
	}
	return obs
}

func rawValue(v answer.Value) any {
	if v.Kind == answer.KindNumber {
		return v.Number
	}
	return v.Text
}

// #endregion build-fixture
