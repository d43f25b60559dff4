package internal

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"vehicle_log/internal/client"
	"vehicle_log/internal/export"
	"vehicle_log/internal/report"
	"vehicle_log/internal/sheet"
)

// Backend is what the form needs from the report server.
type Backend interface {
	Submit(ctx context.Context, records []report.Record) (client.Status, error)
	InFlight() bool
	AutoSave(rec report.Record)
	FetchByDate(ctx context.Context, date string) ([]report.Record, error)
	ViewByDateURL(date string) (string, error)
}

type mode int

const (
	modeGrid mode = iota
	modeEdit
	modeCityPicker
	modeCityInput
	modeGlobalDate
	modeViewDate
	modeLogView
)

const otherCity = "Other..."

type submitResultMsg struct {
	status client.Status
	err    error
}

type logsLoadedMsg struct {
	date    string
	records []report.Record
	err     error
}

type Options struct {
	Cities    []string
	ExportDir string
	Backend   Backend
	Logger    *zap.Logger
}

type Model struct {
	form      *sheet.Form
	backend   Backend
	logger    *zap.Logger
	cities    []string
	exportDir string

	mode    mode
	input   textinput.Model
	spinner spinner.Model

	// cursor
	SectionIndex int
	RowIndex     int
	Column       int
	PickerIndex  int

	// Alert is shown modally until any key is pressed
	Alert  string
	Status string

	Submitting bool

	// log viewer state
	LogDate       string
	LogURL        string
	Logs          []report.Record
	LogViewScroll int

	width, height int
}

func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		form:      sheet.New(),
		backend:   opts.Backend,
		logger:    logger,
		cities:    opts.Cities,
		exportDir: opts.ExportDir,
		input:     ti,
		spinner:   sp,
		width:     100,
		height:    30,
	}
	if m.exportDir == "" {
		m.exportDir = "."
	}
	if m.backend != nil {
		m.form.OnChange(m.backend.AutoSave)
	}
	return m
}

// Form exposes the underlying form model.
func (m *Model) Form() *sheet.Form {
	return m.form
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case spinner.TickMsg:
		if !m.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case submitResultMsg:
		return m.handleSubmitResult(msg)
	case logsLoadedMsg:
		if msg.err != nil {
			m.logger.Error("Failed to load logs", zap.String("date", msg.date), zap.Error(msg.err))
			m.Alert = "Could not load records for " + msg.date
			m.mode = modeGrid
			return m, nil
		}
		m.LogDate = msg.date
		m.Logs = msg.records
		m.LogViewScroll = 0
		m.mode = modeLogView
		return m, nil
	}
	return m, nil
}

func (m *Model) currentSection() *sheet.Section {
	sections := m.form.Sections()
	if m.SectionIndex < 0 || m.SectionIndex >= len(sections) {
		return nil
	}
	return sections[m.SectionIndex]
}

// clampCursor keeps the cursor on an existing cell after rows or sections
// come and go.
func (m *Model) clampCursor() {
	sections := m.form.Sections()
	if m.SectionIndex >= len(sections) {
		m.SectionIndex = len(sections) - 1
	}
	if m.SectionIndex < 0 {
		m.SectionIndex = 0
	}
	s := m.currentSection()
	if s == nil {
		m.RowIndex = 0
		return
	}
	if m.RowIndex >= s.Len() {
		m.RowIndex = s.Len() - 1
	}
	if m.RowIndex < 0 {
		m.RowIndex = 0
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Alert != "" {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.Alert = ""
		return m, nil
	}

	switch m.mode {
	case modeEdit, modeCityInput, modeGlobalDate, modeViewDate:
		return m.handleInput(msg)
	case modeCityPicker:
		return m.handlePicker(msg)
	case modeLogView:
		return m.handleLogViewInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.RowIndex > 0 {
			m.RowIndex--
		} else if m.SectionIndex > 0 {
			m.SectionIndex--
			if s := m.currentSection(); s != nil {
				m.RowIndex = s.Len() - 1
			}
		}
	case "down", "j":
		if s := m.currentSection(); s != nil {
			if m.RowIndex < s.Len()-1 {
				m.RowIndex++
			} else if m.SectionIndex < len(m.form.Sections())-1 {
				m.SectionIndex++
				m.RowIndex = 0
			}
		}
	case "left", "h", "shift+tab":
		if m.Column > 0 {
			m.Column--
		}
	case "right", "l", "tab":
		if m.Column < len(sheet.Fields)-1 {
			m.Column++
		}
	case "enter":
		return m.startEdit()
	case "c":
		m.mode = modeCityPicker
		m.PickerIndex = 0
	case "x":
		if s := m.currentSection(); s != nil {
			m.form.RemoveSection(s.City)
			m.clampCursor()
			m.Status = "Removed " + s.City
		}
	case "a":
		if s := m.currentSection(); s != nil {
			s.AddRow()
			m.RowIndex = s.Len() - 1
		}
	case "d":
		if s := m.currentSection(); s != nil {
			if err := s.RemoveRow(m.RowIndex); err != nil {
				m.Alert = err.Error()
			}
			m.clampCursor()
		}
	case "g":
		return m.openPrompt(modeGlobalDate, m.form.GlobalEntryDate(), "YYYY-MM-DD")
	case "v":
		return m.openPrompt(modeViewDate, m.form.GlobalEntryDate(), "YYYY-MM-DD")
	case "s":
		return m.submit()
	case "e":
		m.exportWorkbook()
	}
	return m, nil
}

func (m *Model) startEdit() (tea.Model, tea.Cmd) {
	s := m.currentSection()
	if s == nil {
		m.Alert = "Add a city first (press c)."
		return m, nil
	}
	row, err := s.Row(m.RowIndex)
	if err != nil {
		return m, nil
	}

	field := sheet.Fields[m.Column]
	if row.Disabled(field) {
		m.Alert = field.String() + " is disabled while work is in progress."
		return m, nil
	}
	if field == sheet.FieldRemarks {
		m.setField(s, field, string(nextRemarks(row.Remarks())))
		return m, nil
	}
	return m.openPrompt(modeEdit, row.Value(field), placeholder(field))
}

func nextRemarks(current report.Remarks) report.Remarks {
	for i, opt := range report.RemarksOptions {
		if opt == current {
			return report.RemarksOptions[(i+1)%len(report.RemarksOptions)]
		}
	}
	return report.RemarksOptions[0]
}

func placeholder(f sheet.Field) string {
	switch f {
	case sheet.FieldEntryDate, sheet.FieldExitDate:
		return "YYYY-MM-DD"
	case sheet.FieldEntryTime, sheet.FieldExitTime:
		return "HH:MM"
	}
	return f.String()
}

func (m *Model) openPrompt(next mode, value, hint string) (tea.Model, tea.Cmd) {
	m.mode = next
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = hint
	return m, m.input.Focus()
}

func (m *Model) closePrompt() {
	m.input.Blur()
	m.mode = modeGrid
}

func (m *Model) setField(s *sheet.Section, f sheet.Field, value string) {
	if err := s.Set(m.RowIndex, f, value); err != nil {
		m.Alert = err.Error()
		return
	}
	m.Status = ""
}

func (m *Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closePrompt()
		return m, nil
	case "enter":
		value := m.input.Value()
		current := m.mode
		m.closePrompt()
		return m.commitInput(current, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitInput(from mode, value string) (tea.Model, tea.Cmd) {
	switch from {
	case modeEdit:
		if s := m.currentSection(); s != nil {
			m.setField(s, sheet.Fields[m.Column], value)
		}
	case modeCityInput:
		m.addSection(value)
	case modeGlobalDate:
		if err := m.form.ApplyGlobalEntryDate(value); err != nil {
			m.Alert = alertText(err)
			return m, nil
		}
		m.Status = "Entry date set to " + value
	case modeViewDate:
		if m.backend == nil {
			m.Alert = "No backend configured."
			return m, nil
		}
		url, err := m.backend.ViewByDateURL(value)
		if err != nil {
			m.Alert = alertText(err)
			return m, nil
		}
		m.LogURL = url
		return m, m.fetchLogsCmd(value)
	}
	return m, nil
}

func (m *Model) handlePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := len(m.cities) + 1
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.mode = modeGrid
	case "up", "k":
		if m.PickerIndex > 0 {
			m.PickerIndex--
		}
	case "down", "j":
		if m.PickerIndex < options-1 {
			m.PickerIndex++
		}
	case "enter":
		if m.PickerIndex == len(m.cities) {
			return m.openPrompt(modeCityInput, "", "City name")
		}
		m.mode = modeGrid
		m.addSection(m.cities[m.PickerIndex])
	}
	return m, nil
}

func (m *Model) addSection(city string) {
	if _, err := m.form.AddSection(city); err != nil {
		m.Alert = alertText(err)
		return
	}
	m.SectionIndex = len(m.form.Sections()) - 1
	m.RowIndex = 0
	m.Column = 0
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "v":
		m.mode = modeGrid
		m.Logs = nil
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := len(m.Logs) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
	return m, nil
}

// submit collects the form and sends it. An empty form is rejected before
// any request is made; a second submit while one is pending is ignored.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	records := m.form.Collect()
	if len(records) == 0 {
		m.Alert = alertText(client.ErrNothingToSubmit)
		return m, nil
	}
	if m.backend == nil {
		m.Alert = "No backend configured."
		return m, nil
	}
	if m.Submitting || m.backend.InFlight() {
		m.Status = "Submission already in progress"
		return m, nil
	}

	m.Submitting = true
	m.Status = "Submitting..."
	return m, tea.Batch(m.spinner.Tick, m.submitCmd(records))
}

func (m *Model) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	m.Submitting = false
	if msg.err != nil {
		if errors.Is(msg.err, client.ErrSubmitInFlight) {
			m.Status = "Submission already in progress"
			return m, nil
		}
		m.logger.Error("Submission failed", zap.Error(msg.err))
		m.Status = ""
		m.Alert = "Submission failed"
		return m, nil
	}

	m.Alert = msg.status.Message
	m.exportWorkbook()
	return m, nil
}

func (m *Model) exportWorkbook() {
	path, err := export.WriteFile(m.exportDir, m.form.CollectByCity())
	if err != nil {
		m.logger.Error("Export failed", zap.Error(err))
		m.Status = "Export failed: " + err.Error()
		return
	}
	m.logger.Info("Exported workbook", zap.String("path", path))
	m.Status = "Exported " + path
}

func alertText(err error) string {
	switch {
	case errors.Is(err, sheet.ErrNoCity):
		return "Please select a city from the list."
	case errors.Is(err, sheet.ErrDuplicateCity):
		return "City already added."
	case errors.Is(err, sheet.ErrNoDate), errors.Is(err, client.ErrNoDate):
		return "Please select a date."
	case errors.Is(err, client.ErrNothingToSubmit):
		return "No valid rows to submit."
	}
	return err.Error()
}
