// Package state defines the tracked application state and the durable
// snapshot store that backs it.
package state

// Mode selects which rate source applies to a session.
type Mode string

const (
	ModePersonal Mode = "personal"
	ModeBusiness Mode = "business"
)

// LabelColors is the palette offered when creating a label. Arbitrary
// colors are still accepted.
var LabelColors = []string{
	"#ef4444", // red
	"#f97316", // orange
	"#eab308", // yellow
	"#22c55e", // green
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#ec4899", // pink
}

// PersonalSettings holds the single rate used in personal mode.
type PersonalSettings struct {
	HourlyRate float64 `json:"hourlyRate"`
}

// Participant is a named, rated team member used in business mode.
type Participant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate"`
}

// Label is a user-defined tag for grouping activities.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ActivityEntry is one completed tracked activity. Entries are immutable
// once recorded, except that a deleted label nulls out LabelID and the user
// may reassign the label.
type ActivityEntry struct {
	ID               string   `json:"id"`
	Mode             Mode     `json:"mode"`
	ActivityName     string   `json:"activityName"`
	StartTime        int64    `json:"startTime"`
	EndTime          int64    `json:"endTime"`
	DurationMinutes  float64  `json:"durationMinutes"`
	Amount           float64  `json:"amount"`
	Currency         string   `json:"currency"`
	LabelID          *string  `json:"labelId"`
	ParticipantIDs   []string `json:"participantIds,omitempty"`
	ParticipantNames []string `json:"participantNames,omitempty"`
}

// ActiveSession is the single in-progress tracked activity. Timestamps are
// epoch milliseconds.
type ActiveSession struct {
	StartTime      int64    `json:"startTime"`
	ActivityName   string   `json:"activityName"`
	LabelID        *string  `json:"labelId"`
	ParticipantIDs []string `json:"participantIds,omitempty"`
}

// AppState is the aggregate persisted as one snapshot. Activities are kept
// most-recent-first.
type AppState struct {
	Mode             Mode             `json:"mode"`
	Currency         string           `json:"currency"`
	PersonalSettings PersonalSettings `json:"personalSettings"`
	Participants     []Participant    `json:"participants"`
	Labels           []Label          `json:"labels"`
	Activities       []ActivityEntry  `json:"activities"`
	ActiveSession    *ActiveSession   `json:"activeSession"`
}

// Default is the state of a store that has never been written: personal
// mode, USD, zero rate, everything empty, no active session.
func Default() AppState {
	return AppState{
		Mode:         ModePersonal,
		Currency:     "USD",
		Participants: []Participant{},
		Labels:       []Label{},
		Activities:   []ActivityEntry{},
	}
}

// ParticipantByID looks a participant up in the roster.
func (s AppState) ParticipantByID(id string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// LabelByID looks a label up by id.
func (s AppState) LabelByID(id string) (Label, bool) {
	for _, l := range s.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}

// Clone returns a snapshot that shares no mutable memory with the receiver,
// so callers can hold it across later mutations.
func (s AppState) Clone() AppState {
	out := s
	out.Participants = append([]Participant(nil), s.Participants...)
	out.Labels = append([]Label(nil), s.Labels...)
	out.Activities = make([]ActivityEntry, len(s.Activities))
	for i, a := range s.Activities {
		out.Activities[i] = a.clone()
	}
	if s.ActiveSession != nil {
		sess := *s.ActiveSession
		sess.LabelID = cloneStringPtr(s.ActiveSession.LabelID)
		sess.ParticipantIDs = append([]string(nil), s.ActiveSession.ParticipantIDs...)
		out.ActiveSession = &sess
	}
	return out
}

func (a ActivityEntry) clone() ActivityEntry {
	out := a
	out.LabelID = cloneStringPtr(a.LabelID)
	out.ParticipantIDs = append([]string(nil), a.ParticipantIDs...)
	out.ParticipantNames = append([]string(nil), a.ParticipantNames...)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
