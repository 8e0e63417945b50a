package internal

import (
	"path/filepath"
	"testing"
	"time"

	"timeismoney/internal/clock"
	"timeismoney/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

type testClock struct {
	now int64
}

func (c *testClock) NowMillis() int64 { return c.now }

func newTestModel(t *testing.T) (*Model, *state.Store, *testClock) {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	clk := &testClock{now: 1_700_000_000_000}
	return NewModel(store, clk), store, clk
}

func keyRunes(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func key(m *Model, t tea.KeyType) {
	m.Update(tea.KeyMsg{Type: t})
}

func TestFreshStoreOpensOnModeSelection(t *testing.T) {
	m, _, _ := newTestModel(t)

	if m.Screen != screenModeSelect {
		t.Errorf("fresh store should open on mode selection, got screen %d", m.Screen)
	}
	if m.State.Mode != state.ModePersonal {
		t.Errorf("initial mode = %q", m.State.Mode)
	}
}

func TestModeSelectionPersistsChoice(t *testing.T) {
	m, store, _ := newTestModel(t)

	key(m, tea.KeyDown)
	key(m, tea.KeyEnter)

	if m.Screen != screenDashboard {
		t.Errorf("screen after selection = %d, want dashboard", m.Screen)
	}
	if store.State().Mode != state.ModeBusiness {
		t.Error("business mode was not persisted")
	}
}

func TestDashboardNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Screen = screenDashboard

	keyRunes(m, "l")
	if m.Screen != screenLog {
		t.Errorf("'l' should open the log, got %d", m.Screen)
	}
	key(m, tea.KeyEscape)
	if m.Screen != screenDashboard {
		t.Error("esc should return to the dashboard")
	}

	keyRunes(m, "g")
	if m.Screen != screenSettings {
		t.Errorf("'g' should open settings, got %d", m.Screen)
	}
	key(m, tea.KeyEscape)
	if m.Screen != screenDashboard {
		t.Error("esc should return to the dashboard")
	}
}

func TestStartAndFinishThroughTheForms(t *testing.T) {
	m, store, clk := newTestModel(t)
	store.SetPersonalRate(15)
	m.State = store.State()
	m.Screen = screenDashboard

	keyRunes(m, "s")
	if m.Screen != screenSessionForm {
		t.Fatalf("'s' should open the session form, got %d", m.Screen)
	}
	keyRunes(m, "Writing")
	key(m, tea.KeyEnter)

	if m.Screen != screenDashboard || !m.Tracking() {
		t.Fatalf("session should be running, screen=%d tracking=%v", m.Screen, m.Tracking())
	}
	if m.State.ActiveSession.ActivityName != "Writing" {
		t.Errorf("session name = %q", m.State.ActiveSession.ActivityName)
	}

	clk.now += (30 * time.Minute).Milliseconds()
	m.Update(MsgTick{})
	if m.Now != clk.now {
		t.Error("tick should refresh the display clock")
	}

	key(m, tea.KeyEnter) // finish form
	if m.Screen != screenFinishForm {
		t.Fatalf("enter while tracking should open the finish form, got %d", m.Screen)
	}
	key(m, tea.KeyEnter) // record

	if m.Tracking() {
		t.Error("session should be cleared after finishing")
	}
	if len(m.State.Activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(m.State.Activities))
	}
	entry := m.State.Activities[0]
	if entry.ActivityName != "Writing" || entry.Amount != 7.5 {
		t.Errorf("entry = %q %v, want Writing 7.5", entry.ActivityName, entry.Amount)
	}
}

func TestBusinessStartNeedsParticipants(t *testing.T) {
	m, store, _ := newTestModel(t)
	store.SetMode(state.ModeBusiness)
	m.State = store.State()
	m.Screen = screenDashboard

	keyRunes(m, "s")
	if m.Screen != screenDashboard {
		t.Errorf("empty roster must refuse the session form, got screen %d", m.Screen)
	}
	if m.Notice == "" {
		t.Error("a notice should explain the refusal")
	}
}

func TestBusinessStartRequiresSelection(t *testing.T) {
	m, store, _ := newTestModel(t)
	store.SetMode(state.ModeBusiness)
	store.AddParticipant("Alice", 20)
	m.State = store.State()
	m.Screen = screenDashboard

	keyRunes(m, "s")
	if m.Screen != screenSessionForm {
		t.Fatalf("session form should open, got %d", m.Screen)
	}
	key(m, tea.KeyEnter)
	if m.Tracking() {
		t.Error("start with no selected participants must be refused")
	}
	if m.Notice == "" {
		t.Error("a notice should prompt for a selection")
	}

	// Select Alice and retry.
	key(m, tea.KeyTab)
	key(m, tea.KeyTab)
	key(m, tea.KeySpace)
	key(m, tea.KeyEnter)
	if !m.Tracking() {
		t.Fatal("session should start after selecting a participant")
	}
	if got := m.State.ActiveSession.ParticipantIDs; len(got) != 1 {
		t.Errorf("participantIds = %v, want one id", got)
	}
}

func TestLogDeleteRemovesEntry(t *testing.T) {
	m, store, _ := newTestModel(t)
	store.AppendActivity(state.ActivityEntry{ActivityName: "old"})
	store.AppendActivity(state.ActivityEntry{ActivityName: "new"})
	m.State = store.State()
	m.Screen = screenLog

	keyRunes(m, "d")
	if len(m.State.Activities) != 1 || m.State.Activities[0].ActivityName != "old" {
		t.Errorf("activities after delete = %+v", m.State.Activities)
	}
}

var _ clock.Clock = (*testClock)(nil)
