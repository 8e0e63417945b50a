package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// snapshotKey is the fixed key of the single persisted snapshot row.
const snapshotKey = "time-is-money-state"

// Store is the single authoritative access point for AppState. It keeps the
// current snapshot in memory and writes it through to sqlite after every
// mutation. Persistence is best-effort: a failed write is logged and the
// in-memory state keeps the mutation for the rest of the process lifetime.
//
// Single-writer: two processes sharing the same database file can overwrite
// each other's snapshots. Nothing here locks across processes.
type Store struct {
	db      *sql.DB
	current AppState
	fresh   bool
}

// Open opens (creating if needed) the snapshot database at path and loads
// the last persisted snapshot. A missing or unreadable snapshot falls back
// to the default state so the app stays usable.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	s.current, s.fresh = s.load()
	return s, nil
}

func (s *Store) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)
	`
	_, err := s.db.Exec(query)
	return err
}

// load reads the persisted snapshot, reporting fresh=true when no row
// existed. A corrupt payload is swallowed: it logs and returns the default
// state, trading silent data loss for an always-usable app.
func (s *Store) load() (AppState, bool) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM snapshots WHERE key = ?", snapshotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Default(), true
	}
	if err != nil {
		log.Printf("state: failed to read snapshot, starting from defaults: %v", err)
		return Default(), true
	}

	// Unmarshal over the defaults so fields missing from older snapshots
	// keep their documented default values.
	st := Default()
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		log.Printf("state: corrupt snapshot discarded, starting from defaults: %v", err)
		return Default(), true
	}
	return st, false
}

// Fresh reports whether no snapshot existed when the store was opened.
func (s *Store) Fresh() bool { return s.fresh }

// State returns the current snapshot. The returned value shares no mutable
// memory with the store.
func (s *Store) State() AppState {
	return s.current.Clone()
}

// Save durably writes the given snapshot, replacing any prior one. Write
// failures are logged, not surfaced.
func (s *Store) Save(st AppState) {
	s.current = st.Clone()
	payload, err := json.Marshal(s.current)
	if err != nil {
		log.Printf("state: failed to encode snapshot: %v", err)
		return
	}
	_, err = s.db.Exec(
		"INSERT INTO snapshots (key, payload) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET payload = excluded.payload",
		snapshotKey, string(payload),
	)
	if err != nil {
		log.Printf("state: failed to persist snapshot: %v", err)
	}
}

// Apply runs a pure transformation over the current snapshot, persists the
// result and returns it. Every mutation of the app state flows through
// here.
func (s *Store) Apply(mutate func(AppState) AppState) AppState {
	next := mutate(s.current.Clone())
	s.Save(next)
	return next.Clone()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func newID() string {
	return uuid.NewString()
}

// SetMode switches between personal and business tracking.
func (s *Store) SetMode(mode Mode) AppState {
	return s.Apply(func(st AppState) AppState {
		st.Mode = mode
		return st
	})
}

// SetCurrency records the display currency code.
func (s *Store) SetCurrency(code string) AppState {
	return s.Apply(func(st AppState) AppState {
		st.Currency = code
		return st
	})
}

// SetPersonalRate sets the personal-mode hourly rate.
func (s *Store) SetPersonalRate(hourlyRate float64) AppState {
	return s.Apply(func(st AppState) AppState {
		st.PersonalSettings.HourlyRate = hourlyRate
		return st
	})
}

// AddParticipant appends a new participant to the roster.
func (s *Store) AddParticipant(name string, hourlyRate float64) AppState {
	return s.Apply(func(st AppState) AppState {
		st.Participants = append(st.Participants, Participant{
			ID:         newID(),
			Name:       name,
			HourlyRate: hourlyRate,
		})
		return st
	})
}

// UpdateParticipant renames and re-rates an existing participant.
func (s *Store) UpdateParticipant(id, name string, hourlyRate float64) AppState {
	return s.Apply(func(st AppState) AppState {
		for i := range st.Participants {
			if st.Participants[i].ID == id {
				st.Participants[i].Name = name
				st.Participants[i].HourlyRate = hourlyRate
				break
			}
		}
		return st
	})
}

// DeleteParticipant removes a participant from the roster. Recorded
// activities are untouched: their participant names were snapshotted at
// finish time.
func (s *Store) DeleteParticipant(id string) AppState {
	return s.Apply(func(st AppState) AppState {
		kept := st.Participants[:0]
		for _, p := range st.Participants {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		st.Participants = kept
		return st
	})
}

// AddLabel creates a new label.
func (s *Store) AddLabel(name, color string) AppState {
	return s.Apply(func(st AppState) AppState {
		st.Labels = append(st.Labels, Label{ID: newID(), Name: name, Color: color})
		return st
	})
}

// UpdateLabel renames and recolors an existing label.
func (s *Store) UpdateLabel(id, name, color string) AppState {
	return s.Apply(func(st AppState) AppState {
		for i := range st.Labels {
			if st.Labels[i].ID == id {
				st.Labels[i].Name = name
				st.Labels[i].Color = color
				break
			}
		}
		return st
	})
}

// DeleteLabel removes a label and nulls out the reference on every activity
// that pointed to it, so no dangling label id survives.
func (s *Store) DeleteLabel(id string) AppState {
	return s.Apply(func(st AppState) AppState {
		kept := st.Labels[:0]
		for _, l := range st.Labels {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		st.Labels = kept
		for i := range st.Activities {
			if st.Activities[i].LabelID != nil && *st.Activities[i].LabelID == id {
				st.Activities[i].LabelID = nil
			}
		}
		if st.ActiveSession != nil && st.ActiveSession.LabelID != nil && *st.ActiveSession.LabelID == id {
			st.ActiveSession.LabelID = nil
		}
		return st
	})
}

// DeleteActivity removes one entry from the history.
func (s *Store) DeleteActivity(id string) AppState {
	return s.Apply(func(st AppState) AppState {
		kept := st.Activities[:0]
		for _, a := range st.Activities {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		st.Activities = kept
		return st
	})
}

// UpdateActivityLabel reassigns (or clears, with nil) an entry's label.
func (s *Store) UpdateActivityLabel(id string, labelID *string) AppState {
	return s.Apply(func(st AppState) AppState {
		for i := range st.Activities {
			if st.Activities[i].ID == id {
				st.Activities[i].LabelID = cloneStringPtr(labelID)
				break
			}
		}
		return st
	})
}

// AppendActivity inserts a finished entry at the head of the history,
// assigning it a fresh id, and clears the active session.
func (s *Store) AppendActivity(entry ActivityEntry) AppState {
	return s.Apply(func(st AppState) AppState {
		entry.ID = newID()
		st.Activities = append([]ActivityEntry{entry}, st.Activities...)
		st.ActiveSession = nil
		return st
	})
}
