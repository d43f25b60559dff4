// Package client talks to the vehicle report backend: bulk submission of the
// collected records, background per-row autosave and lookups by date.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"vehicle_log/internal/report"
)

var (
	ErrNothingToSubmit = errors.New("no valid rows to submit")
	ErrSubmitInFlight  = errors.New("a submission is already in progress")
	ErrNoDate          = errors.New("please select a date")
)

const (
	defaultTimeout     = 15 * time.Second
	defaultJournalSize = 100
)

// Status is the backend's answer to a successful submission.
type Status struct {
	Message string `json:"status"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	journal *Journal

	submits   gate
	autosaves sync.WaitGroup

	// per-row autosave queue: at most one request per row is in flight and
	// only the newest waiting record of a row is kept
	rowsMu  sync.Mutex
	sending map[string]bool
	pending map[string]report.Record
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithJournalSize(n int) Option {
	return func(c *Client) { c.journal = NewJournal(n) }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
		journal: NewJournal(defaultJournalSize),
		sending: make(map[string]bool),
		pending: make(map[string]report.Record),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends all records to the backend in one request. Only one submit
// may be in flight; a second call while the first is pending fails with
// ErrSubmitInFlight. Nothing is retried.
func (c *Client) Submit(ctx context.Context, records []report.Record) (Status, error) {
	if len(records) == 0 {
		return Status{}, ErrNothingToSubmit
	}
	if !c.submits.tryEnter() {
		return Status{}, ErrSubmitInFlight
	}
	defer c.submits.leave()

	c.logger.Info("Submitting reports", zap.Int("records", len(records)))

	status, err := c.postJSON(ctx, "/save_reports", records)
	if err != nil {
		c.logger.Error("Submission failed", zap.Error(err))
		return Status{}, err
	}
	if status.Message == "" {
		status.Message = "Submitted"
	}
	c.logger.Info("Submission accepted", zap.String("status", status.Message))
	return status, nil
}

// InFlight reports whether a submit is pending.
func (c *Client) InFlight() bool {
	return c.submits.isBusy()
}

// InFlightFor is how long the pending submit has been running.
func (c *Client) InFlightFor() time.Duration {
	return c.submits.elapsed()
}

// AutoSave posts a single record in the background. It never blocks and never
// reports an error to the caller; outcomes land in the journal and the log.
// Saves of the same row go out one after another; while one is pending, newer
// edits of that row replace each other and only the last one is sent.
func (c *Client) AutoSave(rec report.Record) {
	c.rowsMu.Lock()
	if rec.RowID != "" {
		if c.sending[rec.RowID] {
			c.pending[rec.RowID] = rec
			c.rowsMu.Unlock()
			return
		}
		c.sending[rec.RowID] = true
	}
	c.autosaves.Add(1)
	c.rowsMu.Unlock()

	go func() {
		defer c.autosaves.Done()
		for {
			c.saveRow(rec)
			next, ok := c.nextPending(rec.RowID)
			if !ok {
				return
			}
			rec = next
		}
	}()
}

// nextPending hands out the waiting record of rowID, or marks the row idle.
func (c *Client) nextPending(rowID string) (report.Record, bool) {
	if rowID == "" {
		return report.Record{}, false
	}
	c.rowsMu.Lock()
	defer c.rowsMu.Unlock()

	if rec, ok := c.pending[rowID]; ok {
		delete(c.pending, rowID)
		return rec, true
	}
	delete(c.sending, rowID)
	return report.Record{}, false
}

func (c *Client) saveRow(rec report.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()

	entry := JournalEntry{RowID: rec.RowID, City: rec.City}
	status, err := c.postJSON(ctx, "/save_reports_row", rec)
	if err != nil {
		entry.Message = err.Error()
		c.logger.Warn("Auto-save failed", zap.String("row_id", rec.RowID), zap.Error(err))
	} else {
		entry.OK = true
		entry.Message = status.Message
		c.logger.Debug("Auto-saved", zap.String("row_id", rec.RowID), zap.String("status", status.Message))
	}
	c.journal.Add(entry)
}

// Wait blocks until every pending autosave has finished.
func (c *Client) Wait() {
	c.autosaves.Wait()
}

func (c *Client) Journal() *Journal {
	return c.journal
}

// ViewByDateURL is the backend page listing the records entered on date.
func (c *Client) ViewByDateURL(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", ErrNoDate
	}
	return c.baseURL + "/view_by_date/" + url.PathEscape(date), nil
}

// FetchByDate loads the stored records entered on date.
func (c *Client) FetchByDate(ctx context.Context, date string) ([]report.Record, error) {
	u, err := c.ViewByDateURL(date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch records: server returned %s", resp.Status)
	}

	var records []report.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (Status, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Status{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, err
	}

	var status Status
	decodeErr := json.Unmarshal(data, &status)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && status.Message != "" {
			return Status{}, fmt.Errorf("server returned %s: %s", resp.Status, status.Message)
		}
		return Status{}, fmt.Errorf("server returned %s", resp.Status)
	}
	if decodeErr != nil {
		return Status{}, fmt.Errorf("invalid response: %w", decodeErr)
	}
	return status, nil
}

func (c *Client) timeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return defaultTimeout
}
