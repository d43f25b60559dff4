package internal

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vehicle_log/internal/report"
)

const requestTimeout = 30 * time.Second

func (m *Model) submitCmd(records []report.Record) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		status, err := backend.Submit(ctx, records)
		return submitResultMsg{status: status, err: err}
	}
}

func (m *Model) fetchLogsCmd(date string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		records, err := backend.FetchByDate(ctx, date)
		return logsLoadedMsg{date: date, records: records, err: err}
	}
}
