// Package session orchestrates the lifecycle of the single tracked
// activity: Idle -> Tracking on Start, Tracking -> Idle on Finish or
// Cancel.
package session

import (
	"errors"
	"strings"
	"time"

	"timeismoney/internal/clock"
	"timeismoney/internal/money"
	"timeismoney/internal/state"
)

// ErrSessionActive is returned by Start while a session is already being
// tracked. The caller must Finish or Cancel first.
var ErrSessionActive = errors.New("a session is already being tracked")

// UntitledActivity names sessions started without a name.
const UntitledActivity = "Untitled Activity"

// Manager drives session state transitions against the store. All methods
// run on the caller's goroutine; the store serializes nothing.
type Manager struct {
	store *state.Store
	clock clock.Clock
}

func NewManager(store *state.Store, clk clock.Clock) *Manager {
	return &Manager{store: store, clock: clk}
}

// Start begins tracking a new activity. It refuses a second start while one
// session is active: the previous session must be finished or cancelled
// explicitly. Rate and participant preconditions are the caller's guard,
// not enforced here.
func (m *Manager) Start(activityName string, labelID *string, participantIDs []string) (state.AppState, error) {
	if st := m.store.State(); st.ActiveSession != nil {
		return st, ErrSessionActive
	}

	name := strings.TrimSpace(activityName)
	if name == "" {
		name = UntitledActivity
	}

	next := m.store.Apply(func(st state.AppState) state.AppState {
		st.ActiveSession = &state.ActiveSession{
			StartTime:      m.clock.NowMillis(),
			ActivityName:   name,
			LabelID:        labelID,
			ParticipantIDs: participantIDs,
		}
		return st
	})
	return next, nil
}

// Finish closes the active session into an immutable activity entry at the
// head of the history. The hourly rate is resolved now, not at start time:
// personal mode reads the current personal rate, business mode sums the
// rates of the selected participants that still exist. A no-op while Idle.
func (m *Manager) Finish(nameOverride string) state.AppState {
	st := m.store.State()
	sess := st.ActiveSession
	if sess == nil {
		return st
	}

	endTime := m.clock.NowMillis()
	durationMinutes := money.DurationMinutes(sess.StartTime, endTime)

	rate, participantNames := resolveRate(st, sess)
	amount := money.Amount(durationMinutes, rate)

	name := strings.TrimSpace(nameOverride)
	if name == "" {
		name = sess.ActivityName
	}
	if name == "" {
		name = UntitledActivity
	}

	return m.store.AppendActivity(state.ActivityEntry{
		Mode:             st.Mode,
		ActivityName:     name,
		StartTime:        sess.StartTime,
		EndTime:          endTime,
		DurationMinutes:  durationMinutes,
		Amount:           amount,
		Currency:         st.Currency,
		LabelID:          sess.LabelID,
		ParticipantIDs:   sess.ParticipantIDs,
		ParticipantNames: participantNames,
	})
}

// Cancel discards the active session without recording anything. A no-op
// while Idle.
func (m *Manager) Cancel() state.AppState {
	if st := m.store.State(); st.ActiveSession == nil {
		return st
	}
	return m.store.Apply(func(st state.AppState) state.AppState {
		st.ActiveSession = nil
		return st
	})
}

// Rename changes the working name of the active session. A no-op while
// Idle or when the new name is blank.
func (m *Manager) Rename(activityName string) state.AppState {
	name := strings.TrimSpace(activityName)
	st := m.store.State()
	if st.ActiveSession == nil || name == "" {
		return st
	}
	return m.store.Apply(func(st state.AppState) state.AppState {
		st.ActiveSession.ActivityName = name
		return st
	})
}

// SetLabel reassigns (or clears) the active session's label. A no-op while
// Idle.
func (m *Manager) SetLabel(labelID *string) state.AppState {
	if st := m.store.State(); st.ActiveSession == nil {
		return st
	}
	return m.store.Apply(func(st state.AppState) state.AppState {
		st.ActiveSession.LabelID = labelID
		return st
	})
}

// Elapsed returns how long the active session has been running, zero while
// Idle. Negative spans from clock skew clamp to zero.
func (m *Manager) Elapsed() time.Duration {
	st := m.store.State()
	if st.ActiveSession == nil {
		return 0
	}
	millis := m.clock.NowMillis() - st.ActiveSession.StartTime
	if millis < 0 {
		millis = 0
	}
	return time.Duration(millis) * time.Millisecond
}

// CurrentRate resolves the hourly rate that would apply if the active
// session finished right now. Zero while Idle.
func (m *Manager) CurrentRate() float64 {
	st := m.store.State()
	if st.ActiveSession == nil {
		return 0
	}
	rate, _ := resolveRate(st, st.ActiveSession)
	return rate
}

// resolveRate returns the applicable hourly rate and, in business mode, the
// names of the selected participants as they exist right now. A participant
// deleted mid-session contributes nothing and drops from the snapshot.
func resolveRate(st state.AppState, sess *state.ActiveSession) (float64, []string) {
	if st.Mode == state.ModePersonal {
		return st.PersonalSettings.HourlyRate, nil
	}

	selected := make(map[string]bool, len(sess.ParticipantIDs))
	for _, id := range sess.ParticipantIDs {
		selected[id] = true
	}

	var rate float64
	var names []string
	for _, p := range st.Participants {
		if selected[p.ID] {
			rate += p.HourlyRate
			names = append(names, p.Name)
		}
	}
	return rate, names
}
