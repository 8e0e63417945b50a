package internal

import (
	"fmt"
	"strconv"
	"strings"

	"timeismoney/internal/clock"
	"timeismoney/internal/session"
	"timeismoney/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

// MsgTick is sent once per second to refresh the live timer display. It is
// a pure read: elapsed time and the running amount are recomputed from the
// clock and the session start time, never stored.
type MsgTick struct{}

type screen int

const (
	screenDashboard screen = iota
	screenModeSelect
	screenSessionForm
	screenFinishForm
	screenRenameForm
	screenLog
	screenLogLabelPick
	screenSettings
	screenCurrencyPick
	screenRateForm
	screenParticipants
	screenParticipantForm
	screenLabels
	screenLabelForm
)

var settingsItems = []string{
	"Tracking mode",
	"Currency",
	"Personal hourly rate",
	"Participants",
	"Labels",
}

type Model struct {
	store    *state.Store
	Sessions *session.Manager
	clk      clock.Clock

	State  state.AppState
	Screen screen
	Notice string
	Now    int64 // millis at the last tick, drives the live display

	Cursor int // list cursor for the focused screen
	Focus  int // focused field inside a form

	NameInput  string
	RateInput  string
	ColorIndex int
	EditingID  string // non-empty while editing an existing item

	// Session form state: label choice (0 = none, i+1 = labels[i]) and the
	// business-mode participant selection.
	LabelChoice int
	Selected    map[string]bool

	LogCursor int
}

func NewModel(store *state.Store, clk clock.Clock) *Model {
	m := &Model{
		store:    store,
		Sessions: session.NewManager(store, clk),
		clk:      clk,
		State:    store.State(),
		Selected: make(map[string]bool),
	}
	m.Now = clk.NowMillis()
	if store.Fresh() {
		m.Screen = screenModeSelect
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.Now = m.clk.NowMillis()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.Screen {
	case screenModeSelect:
		return m.modeSelectView()
	case screenSessionForm:
		return m.sessionFormView()
	case screenFinishForm:
		return m.finishFormView()
	case screenRenameForm:
		return m.renameFormView()
	case screenLog:
		return m.logView()
	case screenLogLabelPick:
		return m.labelPickView()
	case screenSettings:
		return m.settingsView()
	case screenCurrencyPick:
		return m.currencyPickView()
	case screenRateForm:
		return m.rateFormView()
	case screenParticipants:
		return m.participantsView()
	case screenParticipantForm:
		return m.participantFormView()
	case screenLabels:
		return m.labelsView()
	case screenLabelForm:
		return m.labelFormView()
	}
	return m.dashboardView()
}

// Tracking reports whether a session is currently active.
func (m *Model) Tracking() bool {
	return m.State.ActiveSession != nil
}

func (m *Model) refresh(st state.AppState) {
	m.State = st
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Notice = ""

	switch m.Screen {
	case screenModeSelect:
		return m.handleModeSelect(msg)
	case screenSessionForm:
		return m.handleSessionForm(msg)
	case screenFinishForm:
		return m.handleFinishForm(msg)
	case screenRenameForm:
		return m.handleRenameForm(msg)
	case screenLog:
		return m.handleLog(msg)
	case screenLogLabelPick:
		return m.handleLabelPick(msg)
	case screenSettings:
		return m.handleSettings(msg)
	case screenCurrencyPick:
		return m.handleCurrencyPick(msg)
	case screenRateForm:
		return m.handleRateForm(msg)
	case screenParticipants:
		return m.handleParticipants(msg)
	case screenParticipantForm:
		return m.handleParticipantForm(msg)
	case screenLabels:
		return m.handleLabels(msg)
	case screenLabelForm:
		return m.handleLabelForm(msg)
	}
	return m.handleDashboard(msg)
}

func (m *Model) handleDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter", "s":
		if m.Tracking() {
			m.NameInput = ""
			m.Screen = screenFinishForm
		} else {
			m.openSessionForm()
		}
	case "e":
		if m.Tracking() {
			m.NameInput = m.State.ActiveSession.ActivityName
			m.Screen = screenRenameForm
		}
	case "b":
		if m.Tracking() {
			m.refresh(m.Sessions.SetLabel(nextLabelID(m.State, m.State.ActiveSession.LabelID)))
		}
	case "c":
		if m.Tracking() {
			m.refresh(m.Sessions.Cancel())
		}
	case "l":
		m.LogCursor = 0
		m.Screen = screenLog
	case "g":
		m.Cursor = 0
		m.Screen = screenSettings
	case "m":
		if m.Tracking() {
			m.Notice = "Finish or cancel the running session before switching modes."
		} else {
			m.Cursor = modeIndex(m.State.Mode)
			m.Screen = screenModeSelect
		}
	}
	return m, nil
}

func (m *Model) openSessionForm() {
	if m.State.Mode == state.ModeBusiness && len(m.State.Participants) == 0 {
		m.Notice = "Add participants in settings before starting a business session."
		return
	}
	if m.State.Mode == state.ModePersonal && m.State.PersonalSettings.HourlyRate == 0 {
		m.Notice = "Hourly rate is 0. Set it in settings, or the session will record a zero amount."
	}
	m.NameInput = ""
	m.LabelChoice = 0
	m.Selected = make(map[string]bool)
	m.Cursor = 0
	m.Focus = 0
	m.Screen = screenSessionForm
}

func (m *Model) handleSessionForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := 2 // name, label
	if m.State.Mode == state.ModeBusiness {
		fields = 3
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenDashboard
	case "tab":
		m.Focus = (m.Focus + 1) % fields
	case "shift+tab":
		m.Focus = (m.Focus + fields - 1) % fields
	case "left", "right":
		if m.Focus == 1 && len(m.State.Labels) > 0 {
			span := len(m.State.Labels) + 1
			if msg.String() == "right" {
				m.LabelChoice = (m.LabelChoice + 1) % span
			} else {
				m.LabelChoice = (m.LabelChoice + span - 1) % span
			}
		}
	case "up", "down":
		if m.Focus == 2 {
			if msg.String() == "up" && m.Cursor > 0 {
				m.Cursor--
			}
			if msg.String() == "down" && m.Cursor < len(m.State.Participants)-1 {
				m.Cursor++
			}
		}
	case " ":
		if m.Focus == 2 && m.Cursor < len(m.State.Participants) {
			id := m.State.Participants[m.Cursor].ID
			m.Selected[id] = !m.Selected[id]
		} else if m.Focus == 0 {
			m.NameInput += " "
		}
	case "enter":
		return m.submitSessionForm()
	case "backspace":
		if m.Focus == 0 {
			m.NameInput = trimLastRune(m.NameInput)
		}
	default:
		if m.Focus == 0 {
			runes := []rune(msg.String())
			if len(runes) == 1 {
				m.NameInput += string(runes[0])
			}
		}
	}
	return m, nil
}

func (m *Model) submitSessionForm() (tea.Model, tea.Cmd) {
	var labelID *string
	if m.LabelChoice > 0 && m.LabelChoice <= len(m.State.Labels) {
		id := m.State.Labels[m.LabelChoice-1].ID
		labelID = &id
	}

	var participantIDs []string
	if m.State.Mode == state.ModeBusiness {
		for _, p := range m.State.Participants {
			if m.Selected[p.ID] {
				participantIDs = append(participantIDs, p.ID)
			}
		}
		if len(participantIDs) == 0 {
			m.Notice = "Select at least one participant."
			return m, nil
		}
	}

	st, err := m.Sessions.Start(m.NameInput, labelID, participantIDs)
	if err != nil {
		m.Notice = err.Error()
		m.Screen = screenDashboard
		return m, nil
	}
	m.refresh(st)
	m.Screen = screenDashboard
	return m, nil
}

func (m *Model) handleFinishForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenDashboard
	case "enter":
		m.refresh(m.Sessions.Finish(m.NameInput))
		m.Screen = screenDashboard
	case "backspace":
		m.NameInput = trimLastRune(m.NameInput)
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 {
			m.NameInput += string(runes[0])
		}
	}
	return m, nil
}

func (m *Model) handleRenameForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenDashboard
	case "enter":
		m.refresh(m.Sessions.Rename(m.NameInput))
		m.Screen = screenDashboard
	case "backspace":
		m.NameInput = trimLastRune(m.NameInput)
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 {
			m.NameInput += string(runes[0])
		}
	}
	return m, nil
}

func (m *Model) handleModeSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.Screen = screenDashboard
	case "up", "k", "down", "j":
		m.Cursor = 1 - m.Cursor
	case "enter":
		mode := state.ModePersonal
		if m.Cursor == 1 {
			mode = state.ModeBusiness
		}
		m.refresh(m.store.SetMode(mode))
		m.Screen = screenDashboard
	}
	return m, nil
}

func (m *Model) handleLog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "l":
		m.Screen = screenDashboard
	case "up", "k":
		if m.LogCursor > 0 {
			m.LogCursor--
		}
	case "down", "j":
		if m.LogCursor < len(m.State.Activities)-1 {
			m.LogCursor++
		}
	case "d":
		if m.LogCursor < len(m.State.Activities) {
			m.refresh(m.store.DeleteActivity(m.State.Activities[m.LogCursor].ID))
			if m.LogCursor >= len(m.State.Activities) && m.LogCursor > 0 {
				m.LogCursor--
			}
		}
	case "b":
		if m.LogCursor < len(m.State.Activities) {
			m.EditingID = m.State.Activities[m.LogCursor].ID
			m.Cursor = 0
			m.Screen = screenLogLabelPick
		}
	}
	return m, nil
}

func (m *Model) handleLabelPick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	span := len(m.State.Labels) + 1 // first slot clears the label
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenLog
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < span-1 {
			m.Cursor++
		}
	case "enter":
		var labelID *string
		if m.Cursor > 0 {
			id := m.State.Labels[m.Cursor-1].ID
			labelID = &id
		}
		m.refresh(m.store.UpdateActivityLabel(m.EditingID, labelID))
		m.EditingID = ""
		m.Screen = screenLog
	}
	return m, nil
}

func (m *Model) handleSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "g":
		m.Screen = screenDashboard
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(settingsItems)-1 {
			m.Cursor++
		}
	case "enter":
		switch m.Cursor {
		case 0:
			if m.Tracking() {
				m.Notice = "Finish or cancel the running session before switching modes."
				return m, nil
			}
			m.Cursor = modeIndex(m.State.Mode)
			m.Screen = screenModeSelect
		case 1:
			m.Cursor = currencyIndex(m.State.Currency)
			m.Screen = screenCurrencyPick
		case 2:
			m.RateInput = formatRateInput(m.State.PersonalSettings.HourlyRate)
			m.Screen = screenRateForm
		case 3:
			m.Cursor = 0
			m.Screen = screenParticipants
		case 4:
			m.Cursor = 0
			m.Screen = screenLabels
		}
	}
	return m, nil
}

func (m *Model) handleCurrencyPick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Cursor = 1
		m.Screen = screenSettings
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < currencyCount()-1 {
			m.Cursor++
		}
	case "enter":
		m.refresh(m.store.SetCurrency(currencyCode(m.Cursor)))
		m.Cursor = 1
		m.Screen = screenSettings
	}
	return m, nil
}

func (m *Model) handleRateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Cursor = 2
		m.Screen = screenSettings
	case "enter":
		rate, err := parseRate(m.RateInput)
		if err != nil {
			m.Notice = "Enter a non-negative number, like 25 or 12.50."
			return m, nil
		}
		m.refresh(m.store.SetPersonalRate(rate))
		m.Cursor = 2
		m.Screen = screenSettings
	case "backspace":
		m.RateInput = trimLastRune(m.RateInput)
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 && (runes[0] == '.' || (runes[0] >= '0' && runes[0] <= '9')) {
			m.RateInput += string(runes[0])
		}
	}
	return m, nil
}

func (m *Model) handleParticipants(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.Cursor = 3
		m.Screen = screenSettings
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.State.Participants)-1 {
			m.Cursor++
		}
	case "n":
		m.EditingID = ""
		m.NameInput = ""
		m.RateInput = ""
		m.Focus = 0
		m.Screen = screenParticipantForm
	case "e":
		if m.Cursor < len(m.State.Participants) {
			p := m.State.Participants[m.Cursor]
			m.EditingID = p.ID
			m.NameInput = p.Name
			m.RateInput = formatRateInput(p.HourlyRate)
			m.Focus = 0
			m.Screen = screenParticipantForm
		}
	case "d":
		if m.Cursor < len(m.State.Participants) {
			m.refresh(m.store.DeleteParticipant(m.State.Participants[m.Cursor].ID))
			if m.Cursor >= len(m.State.Participants) && m.Cursor > 0 {
				m.Cursor--
			}
		}
	}
	return m, nil
}

func (m *Model) handleParticipantForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenParticipants
	case "tab", "shift+tab":
		m.Focus = 1 - m.Focus
	case "enter":
		if m.Focus == 0 {
			m.Focus = 1
			return m, nil
		}
		name := strings.TrimSpace(m.NameInput)
		if name == "" {
			m.Notice = "A participant needs a name."
			return m, nil
		}
		rate, err := parseRate(m.RateInput)
		if err != nil {
			m.Notice = "Enter a non-negative hourly rate."
			return m, nil
		}
		if m.EditingID != "" {
			m.refresh(m.store.UpdateParticipant(m.EditingID, name, rate))
		} else {
			m.refresh(m.store.AddParticipant(name, rate))
		}
		m.EditingID = ""
		m.Screen = screenParticipants
	case "backspace":
		if m.Focus == 0 {
			m.NameInput = trimLastRune(m.NameInput)
		} else {
			m.RateInput = trimLastRune(m.RateInput)
		}
	default:
		runes := []rune(msg.String())
		if len(runes) != 1 {
			break
		}
		if m.Focus == 0 {
			m.NameInput += string(runes[0])
		} else if runes[0] == '.' || (runes[0] >= '0' && runes[0] <= '9') {
			m.RateInput += string(runes[0])
		}
	}
	return m, nil
}

func (m *Model) handleLabels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.Cursor = 4
		m.Screen = screenSettings
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.State.Labels)-1 {
			m.Cursor++
		}
	case "n":
		m.EditingID = ""
		m.NameInput = ""
		m.ColorIndex = 0
		m.Focus = 0
		m.Screen = screenLabelForm
	case "e":
		if m.Cursor < len(m.State.Labels) {
			l := m.State.Labels[m.Cursor]
			m.EditingID = l.ID
			m.NameInput = l.Name
			m.ColorIndex = colorIndex(l.Color)
			m.Focus = 0
			m.Screen = screenLabelForm
		}
	case "d":
		if m.Cursor < len(m.State.Labels) {
			m.refresh(m.store.DeleteLabel(m.State.Labels[m.Cursor].ID))
			if m.Cursor >= len(m.State.Labels) && m.Cursor > 0 {
				m.Cursor--
			}
		}
	}
	return m, nil
}

func (m *Model) handleLabelForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Screen = screenLabels
	case "tab", "shift+tab":
		m.Focus = 1 - m.Focus
	case "left":
		if m.Focus == 1 {
			m.ColorIndex = (m.ColorIndex + len(state.LabelColors) - 1) % len(state.LabelColors)
		}
	case "right":
		if m.Focus == 1 {
			m.ColorIndex = (m.ColorIndex + 1) % len(state.LabelColors)
		}
	case "enter":
		if m.Focus == 0 {
			m.Focus = 1
			return m, nil
		}
		name := strings.TrimSpace(m.NameInput)
		if name == "" {
			m.Notice = "A label needs a name."
			return m, nil
		}
		color := state.LabelColors[m.ColorIndex]
		if m.EditingID != "" {
			m.refresh(m.store.UpdateLabel(m.EditingID, name, color))
		} else {
			m.refresh(m.store.AddLabel(name, color))
		}
		m.EditingID = ""
		m.Screen = screenLabels
	case "backspace":
		if m.Focus == 0 {
			m.NameInput = trimLastRune(m.NameInput)
		}
	default:
		if m.Focus == 0 {
			runes := []rune(msg.String())
			if len(runes) == 1 {
				m.NameInput += string(runes[0])
			}
		}
	}
	return m, nil
}

func trimLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}

func parseRate(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	rate, err := strconv.ParseFloat(input, 64)
	if err != nil || rate < 0 {
		return 0, fmt.Errorf("invalid rate %q", input)
	}
	return rate, nil
}

func formatRateInput(rate float64) string {
	if rate == 0 {
		return ""
	}
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

func modeIndex(mode state.Mode) int {
	if mode == state.ModeBusiness {
		return 1
	}
	return 0
}

func colorIndex(color string) int {
	for i, c := range state.LabelColors {
		if c == color {
			return i
		}
	}
	return 0
}

// nextLabelID cycles none -> labels[0] -> ... -> labels[n-1] -> none, used
// to retag the running session from the dashboard.
func nextLabelID(st state.AppState, current *string) *string {
	if len(st.Labels) == 0 {
		return nil
	}
	if current == nil {
		id := st.Labels[0].ID
		return &id
	}
	for i, l := range st.Labels {
		if l.ID == *current {
			if i+1 < len(st.Labels) {
				id := st.Labels[i+1].ID
				return &id
			}
			return nil
		}
	}
	id := st.Labels[0].ID
	return &id
}
