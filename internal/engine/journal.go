package engine

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one journaled decision outcome, appended as a line of ndjson.
type Record struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	BarTime   time.Time `json:"bar_time"`
	Symbol    string    `json:"symbol"`
	Close     string    `json:"close"`
	Action    string    `json:"action,omitempty"`
	Result    string    `json:"result"`
	Qty       string    `json:"qty,omitempty"`
	OrderID   int64     `json:"order_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Journal appends decision records to an ndjson file. Appends never fail
// the caller; a journal write problem must not stop the trading loop.
type Journal struct {
	runID  string
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// NewJournal opens (appending) the journal file and assigns a fresh run ID.
func NewJournal(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{
		runID:  uuid.NewString(),
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// RunID returns the identifier stamped on every record of this run.
func (j *Journal) RunID() string {
	return j.runID
}

// Append writes one record, stamping run ID and timestamp.
func (j *Journal) Append(rec Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec.RunID = j.runID
	rec.Timestamp = time.Now().UTC()

	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if _, err := j.writer.Write(append(payload, '\n')); err != nil {
		return
	}
	_ = j.writer.Flush()
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		_ = j.file.Close()
		return err
	}
	return j.file.Close()
}
