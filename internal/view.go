package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"vehicle_log/internal/client"
	"vehicle_log/internal/format"
	"vehicle_log/internal/report"
	"vehicle_log/internal/sheet"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	cityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Bold(true)

	headerCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	cellStyle = lipgloss.NewStyle()

	selectedCellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235"))

	disabledCellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("238"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("204")).
			Padding(1, 3)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("204"))
)

var columnWidths = [...]int{6, 12, 12, 11, 9, 11, 9, 17}

func (m *Model) View() string {
	if m.Alert != "" {
		return m.alertView()
	}

	switch m.mode {
	case modeLogView:
		return m.logView()
	case modeCityPicker:
		return m.pickerView()
	}
	return m.mainView()
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(m.width).Render("Vehicle Report"))
	sb.WriteString("\n\n")
	sb.WriteString(m.infoLine())
	sb.WriteString("\n\n")

	sections := m.form.Sections()
	if len(sections) == 0 {
		sb.WriteString(inactiveStyle.Render("No cities yet. Press 'c' to add one."))
		sb.WriteString("\n")
	}
	for i, s := range sections {
		sb.WriteString(m.sectionView(i, s))
		sb.WriteString("\n")
	}

	if p := m.promptView(); p != "" {
		sb.WriteString("\n")
		sb.WriteString(p)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Move: arrows | Edit: Enter | City: c/x | Row: a/d | Entry date: g | Submit: s | Export: e | View: v | Quit: q"))

	return sb.String()
}

func (m *Model) infoLine() string {
	date := m.form.GlobalEntryDate()
	if date == "" {
		date = "not set"
	}
	line := fmt.Sprintf("Entry date: %s", date)

	if j, ok := m.backend.(interface{ Journal() *client.Journal }); ok {
		journal := j.Journal()
		if failed := journal.Failures(); failed > 0 {
			line += "   " + failureStyle.Render(fmt.Sprintf("auto-save failures: %d", failed))
			if last, ok := lastFailure(journal.Entries()); ok {
				line += " " + inactiveStyle.Render("(last: "+last.City+": "+last.Message+")")
			}
		}
	}
	return line
}

func lastFailure(entries []client.JournalEntry) (client.JournalEntry, bool) {
	for _, e := range entries {
		if !e.OK {
			return e, true
		}
	}
	return client.JournalEntry{}, false
}

func (m *Model) sectionView(index int, s *sheet.Section) string {
	var sb strings.Builder
	sb.WriteString(cityStyle.Render("City: " + s.City))
	sb.WriteString("\n")

	header := make([]string, len(sheet.Fields))
	for i, f := range sheet.Fields {
		header[i] = headerCellStyle.Width(columnWidths[i]).Render(f.String())
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for r, row := range s.Rows() {
		cells := make([]string, len(sheet.Fields))
		for c, f := range sheet.Fields {
			style := cellStyle
			value := row.Value(f)
			if row.Disabled(f) {
				style = disabledCellStyle
				value = "--"
			}
			if index == m.SectionIndex && r == m.RowIndex && c == m.Column && m.mode == modeGrid {
				style = selectedCellStyle
				if value == "" {
					value = "_"
				}
			}
			cells[c] = style.Width(columnWidths[c]).MaxWidth(columnWidths[c]).Render(value)
		}
		sb.WriteString("\n")
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return boxStyle.Render(sb.String())
}

func (m *Model) promptView() string {
	var label string
	switch m.mode {
	case modeEdit:
		label = sheet.Fields[m.Column].String()
	case modeCityInput:
		label = "City"
	case modeGlobalDate:
		label = "Entry date for all rows"
	case modeViewDate:
		label = "View records for date"
	default:
		return ""
	}
	return inputStyle.Render("→ "+label+": ") + m.input.View() +
		"\n" + helpStyle.Render("Enter: Save | Esc: Cancel")
}

func (m *Model) statusLine() string {
	if m.Submitting {
		line := m.spinner.View() + " " + m.Status
		if b, ok := m.backend.(interface{ InFlightFor() time.Duration }); ok {
			if d := b.InFlightFor(); d > 0 {
				line += " " + inactiveStyle.Render(d.Round(time.Second).String())
			}
		}
		return line
	}
	return inactiveStyle.Render(m.Status)
}

func (m *Model) pickerView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Add City"))
	sb.WriteString("\n\n")

	options := append(append([]string(nil), m.cities...), otherCity)
	for i, c := range options {
		marker := "  "
		line := c
		if i == m.PickerIndex {
			marker = "→ "
			line = inputStyle.Render(line)
		} else if _, added := m.form.Section(c); added {
			line = inactiveStyle.Render(line + " (added)")
		}
		sb.WriteString(marker + line + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Up/Down: Select | Enter: Add | Esc: Cancel"))

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(40).Render(sb.String()),
	)
}

func (m *Model) alertView() string {
	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		alertStyle.Render(m.Alert+"\n\n"+helpStyle.Render("Press any key")),
	)
}

func (m *Model) logView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(m.width).Render("Records for " + m.LogDate))
	sb.WriteString("\n")
	if m.LogURL != "" {
		sb.WriteString(helpStyle.Render(m.LogURL))
	}
	sb.WriteString("\n\n")

	if len(m.Logs) == 0 {
		sb.WriteString(inactiveStyle.Render("No records for this date."))
	} else {
		visible := m.height - 8
		if visible < 1 {
			visible = 1
		}
		end := m.LogViewScroll + visible
		if end > len(m.Logs) {
			end = len(m.Logs)
		}
		for _, r := range m.Logs[m.LogViewScroll:end] {
			sb.WriteString(formatLogEntry(r))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Scroll: Up/Down | Back: Esc"))
	return sb.String()
}

func formatLogEntry(r report.Record) string {
	out := "--"
	if r.ExitDate != "" || r.ExitTime != "" {
		out = strings.TrimSpace(r.ExitDate + " " + format.FormatTime12(r.ExitTime))
	}
	return fmt.Sprintf("  %-12s %4s  %-12s %-12s in %s %-8s out %-20s %s",
		r.City, r.Serial, r.VRN, r.Model,
		r.EntryDate, format.FormatTime12(r.EntryTime),
		out, inactiveStyle.Render(string(r.Remarks)),
	)
}
