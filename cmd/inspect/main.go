package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
	"github.com/agroplan/crop-advisor/go-agent/internal/session"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to advisor.db")
	sessionID := flag.String("session", "", "show single session detail")
	last := flag.Int("last", 20, "show N most recent sessions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/advisor.db [--session id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := session.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *sessionID != "" {
		err = runDetailMode(store, *sessionID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID    string `json:"session_id"`
	LastUserText string `json:"last_user_text"`
	UpdatedAt    string `json:"updated_at"`
}

func runListMode(store *session.Store, last int, jsonOut bool) error {
	sessions, err := store.ListSessions(last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, len(sessions))
	for i, s := range sessions {
		rows[i] = listRow{
			SessionID:    s.ID,
			LastUserText: s.LastUserText,
			UpdatedAt:    s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-20s  %s\n", "Session", "Updated", "Last Query")
	fmt.Printf("%-12s+-%-20s+-%s\n", "------------", "--------------------", "------------------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %-20s  %s\n", shortID(r.SessionID), r.UpdatedAt, truncate(r.LastUserText, 60))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type fieldRow struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type detailOutput struct {
	SessionID    string     `json:"session_id"`
	LastUserText string     `json:"last_user_text"`
	Fields       []fieldRow `json:"fields"`
	Events       []string   `json:"events"`
}

func runDetailMode(store *session.Store, sessionID string, jsonOut bool) error {
	st, err := store.LoadSession(sessionID)
	if err != nil {
		return err
	}

	out := detailOutput{
		SessionID:    st.ID,
		LastUserText: st.LastUserText,
		Fields:       fieldRows(st),
		Events:       st.LogLines(),
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:    %s\n", out.SessionID)
	fmt.Printf("Last query: %s\n", out.LastUserText)

	fmt.Printf("\nKnown fields:\n")
	for _, f := range out.Fields {
		marker := " "
		if !registry.IsCanonical(registry.FieldKey(f.Key)) {
			marker = "*" // derived key
		}
		fmt.Printf("  %s %-20s %-7s %s\n", marker, f.Key, f.Kind, f.Value)
	}

	fmt.Printf("\nEvent log (%d entries):\n", len(out.Events))
	for _, line := range out.Events {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

func fieldRows(st *session.State) []fieldRow {
	rows := make([]fieldRow, 0, len(st.Known))
	for key, v := range st.Known {
		kind := "text"
		if v.Kind == answer.KindNumber {
			kind = "number"
		}
		rows = append(rows, fieldRow{Key: string(key), Kind: kind, Value: v.String()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// #endregion detail-mode

// #region output

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// #endregion output
