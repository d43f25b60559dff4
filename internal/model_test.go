package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle_log/internal/client"
	"vehicle_log/internal/report"
	"vehicle_log/internal/sheet"
)

type fakeBackend struct {
	mu        sync.Mutex
	submitted [][]report.Record
	autosaved []report.Record
	submitErr error
	inFlight  bool
	byDate    []report.Record

	journal     *client.Journal
	inFlightFor time.Duration
}

func (f *fakeBackend) Submit(ctx context.Context, records []report.Record) (client.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, records)
	if f.submitErr != nil {
		return client.Status{}, f.submitErr
	}
	return client.Status{Message: "success"}, nil
}

func (f *fakeBackend) InFlight() bool { return f.inFlight }

func (f *fakeBackend) InFlightFor() time.Duration { return f.inFlightFor }

func (f *fakeBackend) Journal() *client.Journal { return f.journal }

func (f *fakeBackend) AutoSave(rec report.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autosaved = append(f.autosaved, rec)
}

func (f *fakeBackend) FetchByDate(ctx context.Context, date string) ([]report.Record, error) {
	return f.byDate, nil
}

func (f *fakeBackend) ViewByDateURL(date string) (string, error) {
	if date == "" {
		return "", client.ErrNoDate
	}
	return "http://backend/view_by_date/" + date, nil
}

func newTestModel(t *testing.T) (*Model, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{journal: client.NewJournal(10)}
	m := NewModel(Options{
		Cities:    []string{"Pune", "Agra"},
		ExportDir: t.TempDir(),
		Backend:   backend,
	})
	return m, backend
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

// typeText feeds text into the focused prompt one rune at a time.
func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and any batched commands one level deep, feeding every
// message except spinner ticks back into the model.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(m, c)
		}
		return
	}
	switch msg.(type) {
	case submitResultMsg, logsLoadedMsg:
		m.Update(msg)
	}
}

func editCell(m *Model, column int, value string) {
	m.Column = column
	press(m, "enter")
	m.input.SetValue(value)
	press(m, "enter")
}

func fillCompleteRow(m *Model) {
	editCell(m, 0, "1")
	editCell(m, 1, "MH12AB1001")
	editCell(m, 2, "Swift")
	editCell(m, 3, "2024-05-01")
	editCell(m, 4, "14:05")
}

func TestAddCityFromPicker(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "c", "enter")
	require.Len(t, m.Form().Sections(), 1)
	assert.Equal(t, "Pune", m.Form().Sections()[0].City)

	press(m, "c", "down", "enter")
	require.Len(t, m.Form().Sections(), 2)
	assert.Equal(t, 1, m.SectionIndex)
}

func TestDuplicateCityShowsAlert(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "c", "enter")
	press(m, "c", "enter")

	assert.Equal(t, "City already added.", m.Alert)
	assert.Len(t, m.Form().Sections(), 1)

	press(m, "x")
	assert.Empty(t, m.Alert, "any key dismisses the alert")
	assert.Len(t, m.Form().Sections(), 1, "the dismissing key is not acted on")
}

func TestTypedCity(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "c", "down", "down", "enter")
	require.Equal(t, modeCityInput, m.mode)
	typeText(m, "Nashik")
	press(m, "enter")

	require.Len(t, m.Form().Sections(), 1)
	assert.Equal(t, "Nashik", m.Form().Sections()[0].City)

	press(m, "c", "down", "down", "enter", "enter")
	assert.Equal(t, "Please select a city from the list.", m.Alert)
}

func TestEditingFillsRowAndGrows(t *testing.T) {
	m, backend := newTestModel(t)
	press(m, "c", "enter")
	fillCompleteRow(m)

	s := m.Form().Sections()[0]
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "MH12AB1001", s.Rows()[0].Value(sheet.FieldVRN))
	assert.Len(t, backend.autosaved, 5, "every change to a non-blank row is auto-saved")
	assert.Equal(t, "Pune", backend.autosaved[4].City)
}

func TestRemarksCycleDisablesExit(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "c", "enter")
	editCell(m, 5, "2024-05-01")

	m.Column = 7
	press(m, "enter")
	row := m.Form().Sections()[0].Rows()[0]
	assert.Equal(t, report.RemarksInProgress, row.Remarks())
	assert.Empty(t, row.Value(sheet.FieldExitDate))

	m.Column = 5
	press(m, "enter")
	assert.Contains(t, m.Alert, "disabled")
}

func TestInvalidValueShowsAlert(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "c", "enter")
	editCell(m, 4, "7pm")
	assert.Contains(t, m.Alert, "HH:MM")
}

func TestSubmitEmptyFormAlertsWithoutRequest(t *testing.T) {
	m, backend := newTestModel(t)
	press(m, "c", "enter")

	cmd := press(m, "s")
	assert.Nil(t, cmd)
	assert.Equal(t, "No valid rows to submit.", m.Alert)
	assert.Empty(t, backend.submitted)
}

func TestSubmitThenExport(t *testing.T) {
	m, backend := newTestModel(t)
	press(m, "c", "enter")
	fillCompleteRow(m)

	cmd := press(m, "s")
	require.NotNil(t, cmd)
	assert.True(t, m.Submitting)

	// a second submit while the first is pending is ignored
	assert.Nil(t, press(m, "s"))

	run(m, cmd)
	assert.False(t, m.Submitting)
	require.Len(t, backend.submitted, 1)
	assert.Len(t, backend.submitted[0], 1)
	assert.Equal(t, "success", m.Alert)

	path := filepath.Join(m.exportDir, "Vehicle_report_01-05-2024.xlsx")
	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Contains(t, m.Status, path)
}

func TestSubmitFailureAlerts(t *testing.T) {
	m, backend := newTestModel(t)
	backend.submitErr = errors.New("connection refused")
	press(m, "c", "enter")
	fillCompleteRow(m)

	run(m, press(m, "s"))
	assert.Equal(t, "Submission failed", m.Alert)

	entries, err := os.ReadDir(m.exportDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is exported after a failed submit")
}

func TestGlobalEntryDate(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "c", "enter")

	press(m, "g")
	press(m, "enter")
	assert.Equal(t, "Please select a date.", m.Alert)
	press(m, "esc")

	press(m, "g")
	typeText(m, "2024-05-01")
	press(m, "enter")
	row := m.Form().Sections()[0].Rows()[0]
	assert.Equal(t, "2024-05-01", row.Value(sheet.FieldEntryDate))
	assert.Equal(t, "2024-05-01", row.Value(sheet.FieldExitDate))
}

func TestViewByDate(t *testing.T) {
	m, backend := newTestModel(t)
	backend.byDate = []report.Record{{City: "Pune", Serial: "1", VRN: "MH12", EntryDate: "2024-05-01"}}

	press(m, "v")
	typeText(m, "2024-05-01")
	cmd := press(m, "enter")
	run(m, cmd)

	assert.Equal(t, modeLogView, m.mode)
	assert.Equal(t, "http://backend/view_by_date/2024-05-01", m.LogURL)
	assert.Len(t, m.Logs, 1)
	assert.Contains(t, m.View(), "MH12")

	press(m, "esc")
	assert.Equal(t, modeGrid, m.mode)
}

func TestRemoveRowKeepsOneRow(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "c", "enter")
	press(m, "d")

	assert.Equal(t, 1, m.Form().Sections()[0].Len())
	assert.Equal(t, 0, m.RowIndex)
}

func TestViewRendersSections(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No cities yet")

	press(m, "c", "enter")
	editCell(m, 1, "MH12AB1001")
	view := m.View()
	assert.Contains(t, view, "City: Pune")
	assert.Contains(t, view, "MH12AB1001")
}

func TestViewShowsAutoSaveFailuresAndSubmitTime(t *testing.T) {
	m, backend := newTestModel(t)
	assert.NotContains(t, m.View(), "auto-save failures")

	backend.journal.Add(client.JournalEntry{City: "Pune", Message: "connection refused"})
	backend.journal.Add(client.JournalEntry{City: "Agra", OK: true, Message: "Row saved"})
	view := m.View()
	assert.Contains(t, view, "auto-save failures: 1")
	assert.Contains(t, view, "Pune: connection refused")

	m.Submitting = true
	m.Status = "Submitting..."
	backend.inFlightFor = 3*time.Second + 200*time.Millisecond
	assert.Contains(t, m.View(), "Submitting... 3s")
}
