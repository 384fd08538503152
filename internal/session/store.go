package session

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agroplan/crop-advisor/go-agent/internal/answer"
	"github.com/agroplan/crop-advisor/go-agent/internal/registry"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id     TEXT PRIMARY KEY,
	last_user_text TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS field_values (
	session_id    TEXT NOT NULL,
	field_key     TEXT NOT NULL,
	kind          TEXT NOT NULL,
	number_value  REAL,
	text_value    TEXT,
	updated_at    TEXT NOT NULL,
	PRIMARY KEY (session_id, field_key),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS event_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	message     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store-struct

// Store mirrors session state into SQLite for external observers (the
// inspect tool, fixture export). The in-memory State stays authoritative
// within a turn; writes here are fire-and-forget from the controller.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other tools.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region sessions

// EnsureSession creates the session row if it does not exist yet.
func (s *Store) EnsureSession(id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		id, now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// SaveUserText records the most recent raw query for a session.
func (s *Store) SaveUserText(id, text string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`UPDATE sessions SET last_user_text = ?, updated_at = ? WHERE session_id = ?`,
		text, now, id,
	)
	if err != nil {
		return fmt.Errorf("save user text: %w", err)
	}
	return nil
}

// SessionInfo is one row of the session listing.
type SessionInfo struct {
	ID           string
	LastUserText string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListSessions returns the most recently updated sessions.
func (s *Store) ListSessions(limit int) ([]SessionInfo, error) {
	rows, err := s.db.Query(
		`SELECT session_id, last_user_text, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var created, updated string
		if err := rows.Scan(&info.ID, &info.LastUserText, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// #endregion sessions

// #region fields

// SaveField upserts one field value for a session (last-write-wins).
func (s *Store) SaveField(id string, key registry.FieldKey, v answer.Value) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var kind string
	var numPtr, textPtr any
	switch v.Kind {
	case answer.KindNumber:
		kind = "number"
		numPtr = v.Number
	default:
		kind = "text"
		textPtr = v.Text
	}

	_, err := s.db.Exec(
		`INSERT INTO field_values (session_id, field_key, kind, number_value, text_value, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, field_key) DO UPDATE SET
		   kind = excluded.kind,
		   number_value = excluded.number_value,
		   text_value = excluded.text_value,
		   updated_at = excluded.updated_at`,
		id, string(key), kind, numPtr, textPtr, now,
	)
	if err != nil {
		return fmt.Errorf("save field %s: %w", key, err)
	}
	return nil
}

// LoadFields reads all stored field values for a session.
func (s *Store) LoadFields(id string) (map[registry.FieldKey]answer.Value, error) {
	rows, err := s.db.Query(
		`SELECT field_key, kind, number_value, text_value
		 FROM field_values WHERE session_id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	defer rows.Close()

	out := make(map[registry.FieldKey]answer.Value)
	for rows.Next() {
		var key, kind string
		var num sql.NullFloat64
		var text sql.NullString
		if err := rows.Scan(&key, &kind, &num, &text); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		if kind == "number" && num.Valid {
			out[registry.FieldKey(key)] = answer.Num(num.Float64)
		} else {
			out[registry.FieldKey(key)] = answer.Text(text.String)
		}
	}
	return out, rows.Err()
}

// #endregion fields

// #region events

// AppendEvent persists one trace entry.
func (s *Store) AppendEvent(id string, ev Event) error {
	_, err := s.db.Exec(
		`INSERT INTO event_log (session_id, message, created_at) VALUES (?, ?, ?)`,
		id, ev.Message, ev.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents returns a session's trace entries in append order.
func (s *Store) ListEvents(id string) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT message, created_at FROM event_log WHERE session_id = ? ORDER BY id ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var created string
		if err := rows.Scan(&ev.Message, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.At, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// #endregion events

// #region load-session

// LoadSession reconstructs a State from persisted rows. The event log is
// loaded too so a restarted observer sees the full trace.
func (s *Store) LoadSession(id string) (*State, error) {
	var lastText string
	err := s.db.QueryRow(
		`SELECT last_user_text FROM sessions WHERE session_id = ?`, id,
	).Scan(&lastText)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	fields, err := s.LoadFields(id)
	if err != nil {
		return nil, err
	}
	events, err := s.ListEvents(id)
	if err != nil {
		return nil, err
	}

	return &State{
		ID:           id,
		Known:        fields,
		Events:       events,
		LastUserText: lastText,
	}, nil
}

// #endregion load-session
