package client

import (
	"sync"
	"time"
)

// JournalEntry is the outcome of one background autosave.
type JournalEntry struct {
	Time    time.Time `json:"time"`
	RowID   string    `json:"row_id"`
	City    string    `json:"city"`
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
}

// Journal is a thread-safe ring buffer of autosave outcomes.
type Journal struct {
	mu       sync.RWMutex
	entries  []JournalEntry
	cap      int
	failures int
}

// NewJournal creates a journal keeping the last capacity entries.
func NewJournal(capacity int) *Journal {
	if capacity < 1 {
		capacity = 1
	}
	return &Journal{
		entries: make([]JournalEntry, 0, capacity),
		cap:     capacity,
	}
}

func (j *Journal) Add(e JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if !e.OK {
		j.failures++
	}

	if len(j.entries) >= j.cap {
		// drop the oldest
		copy(j.entries, j.entries[1:])
		j.entries[len(j.entries)-1] = e
	} else {
		j.entries = append(j.entries, e)
	}
}

// Entries returns the kept entries, newest first.
func (j *Journal) Entries() []JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := make([]JournalEntry, len(j.entries))
	for i, k := 0, len(j.entries)-1; k >= 0; i, k = i+1, k-1 {
		result[i] = j.entries[k]
	}
	return result
}

// Failures counts every failed autosave since the journal was created,
// including ones already rotated out.
func (j *Journal) Failures() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.failures
}
