package internal

import (
	"fmt"
	"strings"
	"time"

	"timeismoney/internal/clock"
	"timeismoney/internal/money"
	"timeismoney/internal/state"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	listItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	listItemSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	amountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inputInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

const appTitle = "Time is Money"

func currencyCount() int { return len(money.Currencies) }

func currencyCode(i int) string {
	if i < 0 || i >= len(money.Currencies) {
		return "USD"
	}
	return money.Currencies[i].Code
}

func currencyIndex(code string) int {
	for i, c := range money.Currencies {
		if c.Code == code {
			return i
		}
	}
	return 0
}

func labelSwatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

func (m *Model) labelName(labelID *string) string {
	if labelID == nil {
		return ""
	}
	if l, ok := m.State.LabelByID(*labelID); ok {
		return labelSwatch(l.Color) + " " + l.Name
	}
	return ""
}

func centered(content string) string {
	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (m *Model) dashboardView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render(appTitle))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statusBoxView(),
		"  ",
		m.timerBoxView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n")

	if m.Notice != "" {
		sb.WriteString(noticeStyle.Render(m.Notice))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.Tracking() {
		sb.WriteString(helpStyle.Render("Finish: Enter | Rename: e | Label: b | Cancel: c | Log: l | Settings: g | Quit: q"))
	} else {
		sb.WriteString(helpStyle.Render("Start: Enter | Log: l | Settings: g | Mode: m | Quit: q"))
	}

	return sb.String()
}

func (m *Model) statusBoxView() string {
	var sb strings.Builder

	sb.WriteString("Setup\n\n")
	if m.State.Mode == state.ModeBusiness {
		sb.WriteString("Mode: Business\n")
		sb.WriteString(fmt.Sprintf("Participants: %d\n", len(m.State.Participants)))
	} else {
		sb.WriteString("Mode: Personal\n")
		rate := money.FormatAmount(m.State.PersonalSettings.HourlyRate, m.State.Currency)
		sb.WriteString(fmt.Sprintf("Rate: %s/hr\n", rate))
	}
	sb.WriteString(fmt.Sprintf("Currency: %s\n", m.State.Currency))
	sb.WriteString(fmt.Sprintf("Labels: %d\n", len(m.State.Labels)))
	sb.WriteString(fmt.Sprintf("Activities: %d\n", len(m.State.Activities)))

	return boxStyle.Width(25).Height(15).Render(sb.String())
}

func (m *Model) timerBoxView() string {
	var sb strings.Builder

	if sess := m.State.ActiveSession; sess != nil {
		elapsedMillis := m.Now - sess.StartTime
		if elapsedMillis < 0 {
			elapsedMillis = 0
		}
		elapsed := time.Duration(elapsedMillis) * time.Millisecond
		running := money.Amount(money.DurationMinutes(sess.StartTime, m.Now), m.Sessions.CurrentRate())

		sb.WriteString(fmt.Sprintf("Tracking: %s\n\n", sess.ActivityName))
		sb.WriteString(timerRunningStyle.Render(money.FormatElapsed(elapsed)))
		sb.WriteString("\n\n")
		sb.WriteString(amountStyle.Render(money.FormatAmount(running, m.State.Currency)))
		sb.WriteString("\n")
		if name := m.labelName(sess.LabelID); name != "" {
			sb.WriteString(name + "\n")
		}
		if len(sess.ParticipantIDs) > 0 {
			sb.WriteString(fmt.Sprintf("%d participant(s)\n", len(sess.ParticipantIDs)))
		}
		sb.WriteString("\n")
		sb.WriteString(runningStyle.Render("Running"))
		sb.WriteString("\n")
	} else {
		sb.WriteString("No active session\n\n")
		sb.WriteString(timerDisplayStyle.Render(money.FormatElapsed(0)))
		sb.WriteString("\n\n")
		sb.WriteString(inactiveStyle.Render("Idle"))
		sb.WriteString("\n")
	}

	// Most recent entries, newest first.
	if len(m.State.Activities) > 0 {
		sb.WriteString("\n")
		sb.WriteString(logHeaderStyle.Render("Recent"))
		sb.WriteString("\n")
		count := len(m.State.Activities)
		if count > 4 {
			count = 4
		}
		for _, a := range m.State.Activities[:count] {
			sb.WriteString(m.formatActivityLine(a))
			sb.WriteString("\n")
		}
	}

	return boxStyle.Width(45).Height(15).Render(sb.String())
}

func (m *Model) formatActivityLine(a state.ActivityEntry) string {
	when := logTimeStyle.Render(clock.Time(a.EndTime).Format("Jan 02 15:04"))
	dur := money.FormatMinutes(a.DurationMinutes)
	amount := money.FormatAmount(a.Amount, a.Currency)
	label := ""
	if name := m.labelName(a.LabelID); name != "" {
		label = " " + name
	}
	return fmt.Sprintf("  %s  %s  %s  %s%s", when, dur, amount, a.ActivityName, label)
}

func (m *Model) modeSelectView() string {
	var sb strings.Builder
	sb.WriteString("How are you tracking time today?\n\n")

	personal := "Personal — track costs, hobbies & personal projects"
	business := "Business — bill a roster of rated participants"
	if m.Cursor == 0 {
		sb.WriteString(listItemSelectedStyle.Render(personal))
		sb.WriteString("\n")
		sb.WriteString(listItemStyle.Render(inactiveStyle.Render(business)))
	} else {
		sb.WriteString(listItemStyle.Render(inactiveStyle.Render(personal)))
		sb.WriteString("\n")
		sb.WriteString(listItemSelectedStyle.Render(business))
	}
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("Up/Down: Choose | Enter: Select | Esc: Back"))

	return centered(titleStyle.Render("Mode Selection") + "\n\n" + boxStyle.Width(60).Render(sb.String()))
}

func inputField(label, value string, focused bool) string {
	marker := "  "
	if focused {
		marker = "→ "
	}
	rendered := fmt.Sprintf("%s%s", marker, label)
	if focused {
		return inputStyle.Render(rendered) + inputStyle.Render(value+"█")
	}
	return inputInactiveStyle.Render(rendered) + value
}

func (m *Model) sessionFormView() string {
	var sb strings.Builder

	sb.WriteString(inputField("Activity name: ", m.NameInput, m.Focus == 0))
	sb.WriteString("\n\n")

	labelValue := "(none)"
	if m.LabelChoice > 0 && m.LabelChoice <= len(m.State.Labels) {
		l := m.State.Labels[m.LabelChoice-1]
		labelValue = labelSwatch(l.Color) + " " + l.Name
	}
	marker := "  "
	labelLabel := "Label: "
	if m.Focus == 1 {
		marker = "→ "
		sb.WriteString(inputStyle.Render(marker+labelLabel) + labelValue + inputStyle.Render("  ←/→"))
	} else {
		sb.WriteString(inputInactiveStyle.Render(marker+labelLabel) + labelValue)
	}
	sb.WriteString("\n")

	if m.State.Mode == state.ModeBusiness {
		sb.WriteString("\n")
		header := "  Participants:"
		if m.Focus == 2 {
			header = inputStyle.Render("→ Participants:")
		} else {
			header = inputInactiveStyle.Render(header)
		}
		sb.WriteString(header)
		sb.WriteString("\n")
		for i, p := range m.State.Participants {
			mark := "[ ]"
			if m.Selected[p.ID] {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s (%s/hr)", mark, p.Name, money.FormatAmount(p.HourlyRate, m.State.Currency))
			if m.Focus == 2 && i == m.Cursor {
				sb.WriteString(listItemSelectedStyle.Render(line))
			} else {
				sb.WriteString(listItemStyle.Render(inactiveStyle.Render(line)))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if m.Notice != "" {
		sb.WriteString(noticeStyle.Render(m.Notice))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("Tab: Next field | Space: Toggle | Enter: Start | Esc: Cancel"))

	return centered(titleStyle.Render("Start Session") + "\n\n" + boxStyle.Width(60).Render(sb.String()))
}

func (m *Model) finishFormView() string {
	sess := m.State.ActiveSession
	elapsed := ""
	if sess != nil {
		elapsedMillis := m.Now - sess.StartTime
		if elapsedMillis < 0 {
			elapsedMillis = 0
		}
		elapsed = money.FormatElapsed(time.Duration(elapsedMillis) * time.Millisecond)
	}

	form := fmt.Sprintf(
		"Session duration: %s\n\n%s\n\n%s",
		timerDisplayStyle.Render(elapsed),
		inputField("Final name (blank keeps current): ", m.NameInput, true),
		helpStyle.Render("Enter: Record | Esc: Keep tracking"),
	)

	return centered(titleStyle.Render("Finish Session") + "\n\n" + boxStyle.Width(60).Render(form))
}

func (m *Model) renameFormView() string {
	form := fmt.Sprintf(
		"%s\n\n%s",
		inputField("Activity name: ", m.NameInput, true),
		helpStyle.Render("Enter: Save | Esc: Cancel"),
	)
	return centered(titleStyle.Render("Rename Session") + "\n\n" + boxStyle.Width(60).Render(form))
}

func (m *Model) logView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Activity Log"))
	sb.WriteString("\n\n")

	if len(m.State.Activities) == 0 {
		sb.WriteString(inactiveStyle.Render("  Nothing recorded yet."))
		sb.WriteString("\n")
	}

	for i, a := range m.State.Activities {
		line := m.formatActivityLine(a)
		if a.Mode == state.ModeBusiness && len(a.ParticipantNames) > 0 {
			line += inactiveStyle.Render("  with " + strings.Join(a.ParticipantNames, ", "))
		}
		if i == m.LogCursor {
			sb.WriteString(listItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.Notice != "" {
		sb.WriteString(noticeStyle.Render(m.Notice))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("Navigate: Up/Down | Delete: d | Label: b | Back: Esc"))

	return sb.String()
}

func (m *Model) labelPickView() string {
	var sb strings.Builder

	options := make([]string, 0, len(m.State.Labels)+1)
	options = append(options, "(none)")
	for _, l := range m.State.Labels {
		options = append(options, labelSwatch(l.Color)+" "+l.Name)
	}

	for i, opt := range options {
		if i == m.Cursor {
			sb.WriteString(listItemSelectedStyle.Render(opt))
		} else {
			sb.WriteString(listItemStyle.Render(inactiveStyle.Render(opt)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: Assign | Esc: Back"))

	return centered(titleStyle.Render("Assign Label") + "\n\n" + boxStyle.Width(40).Render(sb.String()))
}

func (m *Model) settingsView() string {
	var sb strings.Builder

	for i, item := range settingsItems {
		if i == m.Cursor {
			sb.WriteString(listItemSelectedStyle.Render(item))
		} else {
			sb.WriteString(listItemStyle.Render(inactiveStyle.Render(item)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if m.Notice != "" {
		sb.WriteString(noticeStyle.Render(m.Notice))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("Enter: Open | Esc: Back"))

	return centered(titleStyle.Render("Settings") + "\n\n" + boxStyle.Width(40).Render(sb.String()))
}

func (m *Model) currencyPickView() string {
	var sb strings.Builder

	for i, c := range money.Currencies {
		line := fmt.Sprintf("%s  %s (%s)", c.Symbol, c.Name, c.Code)
		if i == m.Cursor {
			sb.WriteString(listItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(listItemStyle.Render(inactiveStyle.Render(line)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: Select | Esc: Back"))

	return centered(titleStyle.Render("Currency") + "\n\n" + boxStyle.Width(45).Render(sb.String()))
}

func (m *Model) rateFormView() string {
	form := fmt.Sprintf(
		"%s\n\n%s",
		inputField("Hourly rate: ", m.RateInput, true),
		helpStyle.Render("Enter: Save | Esc: Cancel"),
	)
	if m.Notice != "" {
		form += "\n" + noticeStyle.Render(m.Notice)
	}
	return centered(titleStyle.Render("Personal Hourly Rate") + "\n\n" + boxStyle.Width(50).Render(form))
}

func (m *Model) participantsView() string {
	var sb strings.Builder

	if len(m.State.Participants) == 0 {
		sb.WriteString(inactiveStyle.Render("No participants yet. Press 'n' to add one."))
		sb.WriteString("\n")
	}
	for i, p := range m.State.Participants {
		line := fmt.Sprintf("%s  %s/hr", p.Name, money.FormatAmount(p.HourlyRate, m.State.Currency))
		if i == m.Cursor {
			sb.WriteString(listItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(listItemStyle.Render(inactiveStyle.Render(line)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("New: n | Edit: e | Delete: d | Back: Esc"))

	return centered(titleStyle.Render("Participants") + "\n\n" + boxStyle.Width(50).Render(sb.String()))
}

func (m *Model) participantFormView() string {
	title := "Add Participant"
	if m.EditingID != "" {
		title = "Edit Participant"
	}

	form := fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		inputField("Name: ", m.NameInput, m.Focus == 0),
		inputField("Hourly rate: ", m.RateInput, m.Focus == 1),
		helpStyle.Render("Tab: Switch | Enter: Save | Esc: Cancel"),
	)
	if m.Notice != "" {
		form += "\n" + noticeStyle.Render(m.Notice)
	}
	return centered(titleStyle.Render(title) + "\n\n" + boxStyle.Width(50).Render(form))
}

func (m *Model) labelsView() string {
	var sb strings.Builder

	if len(m.State.Labels) == 0 {
		sb.WriteString(inactiveStyle.Render("No labels yet. Press 'n' to add one."))
		sb.WriteString("\n")
	}
	for i, l := range m.State.Labels {
		line := labelSwatch(l.Color) + " " + l.Name
		if i == m.Cursor {
			sb.WriteString(listItemSelectedStyle.Render(line))
		} else {
			sb.WriteString(listItemStyle.Render(inactiveStyle.Render(line)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("New: n | Edit: e | Delete: d | Back: Esc"))

	return centered(titleStyle.Render("Labels") + "\n\n" + boxStyle.Width(50).Render(sb.String()))
}

func (m *Model) labelFormView() string {
	title := "Add Label"
	if m.EditingID != "" {
		title = "Edit Label"
	}

	var palette strings.Builder
	for i, c := range state.LabelColors {
		swatch := labelSwatch(c)
		if i == m.ColorIndex {
			palette.WriteString("[" + swatch + "]")
		} else {
			palette.WriteString(" " + swatch + " ")
		}
	}
	colorMarker := "  "
	colorLabel := "Color: "
	colorLine := inputInactiveStyle.Render(colorMarker+colorLabel) + palette.String()
	if m.Focus == 1 {
		colorLine = inputStyle.Render("→ "+colorLabel) + palette.String() + inputStyle.Render("  ←/→")
	}

	form := fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		inputField("Name: ", m.NameInput, m.Focus == 0),
		colorLine,
		helpStyle.Render("Tab: Switch | Enter: Save | Esc: Cancel"),
	)
	if m.Notice != "" {
		form += "\n" + noticeStyle.Render(m.Notice)
	}
	return centered(titleStyle.Render(title) + "\n\n" + boxStyle.Width(56).Render(form))
}
