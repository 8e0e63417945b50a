package session

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"timeismoney/internal/clock"
	"timeismoney/internal/state"
)

// fakeClock advances only when the test says so.
type fakeClock struct {
	now int64
}

func (c *fakeClock) NowMillis() int64 { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now += d.Milliseconds() }

func newTestManager(t *testing.T) (*Manager, *state.Store, *fakeClock) {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	clk := &fakeClock{now: 1_700_000_000_000}
	return NewManager(store, clk), store, clk
}

func TestStartThenFinishRecordsOneEntry(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	store.SetPersonalRate(15)

	start := clk.now
	st, err := mgr.Start("Writing", nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.ActiveSession == nil || st.ActiveSession.StartTime != start {
		t.Fatalf("active session = %+v", st.ActiveSession)
	}

	clk.advance(90 * time.Minute)
	st = mgr.Finish("X")

	if st.ActiveSession != nil {
		t.Error("session should be cleared after finish")
	}
	if len(st.Activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(st.Activities))
	}
	entry := st.Activities[0]
	if entry.ActivityName != "X" {
		t.Errorf("name = %q, want override X", entry.ActivityName)
	}
	if entry.StartTime != start || entry.EndTime != clk.now {
		t.Errorf("timestamps = %d..%d, want %d..%d", entry.StartTime, entry.EndTime, start, clk.now)
	}
	if math.Abs(entry.DurationMinutes-90) > 1e-9 {
		t.Errorf("durationMinutes = %v, want 90", entry.DurationMinutes)
	}
	// Personal mode, $15/hr, 90 minutes.
	if math.Abs(entry.Amount-22.5) > 1e-9 {
		t.Errorf("amount = %v, want 22.50", entry.Amount)
	}
	if entry.Mode != state.ModePersonal || entry.Currency != "USD" {
		t.Errorf("entry mode/currency = %q/%q", entry.Mode, entry.Currency)
	}
}

func TestBusinessFinishSumsSelectedRates(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	store.SetMode(state.ModeBusiness)
	store.AddParticipant("Alice", 20)
	st := store.AddParticipant("Bob", 30)
	aliceID := st.Participants[0].ID
	bobID := st.Participants[1].ID

	if _, err := mgr.Start("Workshop", nil, []string{aliceID, bobID}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(30 * time.Minute)
	st = mgr.Finish("")

	entry := st.Activities[0]
	// 0.5 hr at a combined $50/hr.
	if math.Abs(entry.Amount-25) > 1e-9 {
		t.Errorf("amount = %v, want 25.00", entry.Amount)
	}
	if len(entry.ParticipantNames) != 2 ||
		entry.ParticipantNames[0] != "Alice" || entry.ParticipantNames[1] != "Bob" {
		t.Errorf("participantNames = %v, want [Alice Bob]", entry.ParticipantNames)
	}
	if entry.Mode != state.ModeBusiness {
		t.Errorf("mode = %q, want business", entry.Mode)
	}
}

func TestRateResolvesAtFinishTime(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	store.SetPersonalRate(10)

	if _, err := mgr.Start("Reading", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(60 * time.Minute)
	// Mid-session rate change takes effect: the rate is live, not frozen.
	store.SetPersonalRate(40)
	st := mgr.Finish("")

	if got := st.Activities[0].Amount; math.Abs(got-40) > 1e-9 {
		t.Errorf("amount = %v, want 40 (rate at finish time)", got)
	}
}

func TestParticipantDeletedMidSessionContributesNothing(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	store.SetMode(state.ModeBusiness)
	store.AddParticipant("Alice", 20)
	st := store.AddParticipant("Bob", 30)
	aliceID := st.Participants[0].ID
	bobID := st.Participants[1].ID

	if _, err := mgr.Start("Call", nil, []string{aliceID, bobID}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	store.DeleteParticipant(bobID)
	clk.advance(60 * time.Minute)
	st = mgr.Finish("")

	entry := st.Activities[0]
	if math.Abs(entry.Amount-20) > 1e-9 {
		t.Errorf("amount = %v, want 20 (Bob dropped)", entry.Amount)
	}
	if len(entry.ParticipantNames) != 1 || entry.ParticipantNames[0] != "Alice" {
		t.Errorf("participantNames = %v, want [Alice]", entry.ParticipantNames)
	}
}

func TestDoubleStartIsRejected(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	if _, err := mgr.Start("first", nil, nil); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	st, err := mgr.Start("second", nil, nil)
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start err = %v, want ErrSessionActive", err)
	}
	if st.ActiveSession.ActivityName != "first" {
		t.Errorf("rejected start must not touch the running session, got %q", st.ActiveSession.ActivityName)
	}
}

func TestFinishWhileIdleIsNoOp(t *testing.T) {
	mgr, store, _ := newTestManager(t)

	st := mgr.Finish("anything")
	if len(st.Activities) != 0 {
		t.Errorf("finish while idle recorded %d entries", len(st.Activities))
	}
	if store.State().ActiveSession != nil {
		t.Error("no session should appear")
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	mgr, _, clk := newTestManager(t)

	if _, err := mgr.Start("doomed", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(10 * time.Minute)
	st := mgr.Cancel()

	if st.ActiveSession != nil {
		t.Error("cancel should clear the session")
	}
	if len(st.Activities) != 0 {
		t.Error("cancel must not record an entry")
	}

	// Idle cancel is a no-op too.
	if st := mgr.Cancel(); st.ActiveSession != nil || len(st.Activities) != 0 {
		t.Error("idle cancel changed state")
	}
}

func TestEmptyNameDefaultsToUntitled(t *testing.T) {
	mgr, _, clk := newTestManager(t)

	st, err := mgr.Start("   ", nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.ActiveSession.ActivityName != UntitledActivity {
		t.Errorf("name = %q, want %q", st.ActiveSession.ActivityName, UntitledActivity)
	}

	clk.advance(time.Minute)
	st = mgr.Finish("")
	if st.Activities[0].ActivityName != UntitledActivity {
		t.Errorf("recorded name = %q, want %q", st.Activities[0].ActivityName, UntitledActivity)
	}
}

func TestFinishKeepsStoredNameWithoutOverride(t *testing.T) {
	mgr, _, clk := newTestManager(t)

	if _, err := mgr.Start("Sketching", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(time.Minute)
	st := mgr.Finish("  ")
	if st.Activities[0].ActivityName != "Sketching" {
		t.Errorf("name = %q, want stored name", st.Activities[0].ActivityName)
	}
}

func TestClockSkewClampsDurationToZero(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	store.SetPersonalRate(100)

	if _, err := mgr.Start("skewed", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.now -= (5 * time.Minute).Milliseconds()
	st := mgr.Finish("")

	entry := st.Activities[0]
	if entry.DurationMinutes != 0 || entry.Amount != 0 {
		t.Errorf("skewed finish = %v min, %v amount; want zeroes", entry.DurationMinutes, entry.Amount)
	}
}

func TestRenameAndSetLabel(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	st := store.AddLabel("Focus", "#22c55e")
	labelID := st.Labels[0].ID

	// Both are no-ops while idle.
	if st := mgr.Rename("nope"); st.ActiveSession != nil {
		t.Error("idle rename created a session")
	}
	if st := mgr.SetLabel(&labelID); st.ActiveSession != nil {
		t.Error("idle label set created a session")
	}

	if _, err := mgr.Start("draft", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st = mgr.Rename("Final Name")
	if st.ActiveSession.ActivityName != "Final Name" {
		t.Errorf("renamed to %q", st.ActiveSession.ActivityName)
	}
	if st := mgr.Rename("  "); st.ActiveSession.ActivityName != "Final Name" {
		t.Error("blank rename should keep the current name")
	}

	st = mgr.SetLabel(&labelID)
	if st.ActiveSession.LabelID == nil || *st.ActiveSession.LabelID != labelID {
		t.Error("label was not set on the session")
	}
	st = mgr.SetLabel(nil)
	if st.ActiveSession.LabelID != nil {
		t.Error("label was not cleared")
	}
}

func TestElapsedAndCurrentRate(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	store.SetPersonalRate(60)

	if mgr.Elapsed() != 0 || mgr.CurrentRate() != 0 {
		t.Error("idle manager should report zero elapsed and rate")
	}

	if _, err := mgr.Start("live", nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	clk.advance(90 * time.Second)

	if got := mgr.Elapsed(); got != 90*time.Second {
		t.Errorf("Elapsed = %v, want 90s", got)
	}
	if got := mgr.CurrentRate(); got != 60 {
		t.Errorf("CurrentRate = %v, want 60", got)
	}
}

var _ clock.Clock = (*fakeClock)(nil)
