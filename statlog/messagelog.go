package statlog

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/hpinterconnect/interconnect-sim/flow"
)

// MessageLog records one row per completed message: its transaction key
// decomposed into (app, terminal, message) ids, creation/completion times,
// latency, and size in flits.
type MessageLog struct {
	file   *os.File
	writer *csv.Writer
}

// NewMessageLog creates (or truncates) path and writes the CSV header.
func NewMessageLog(path string) (*MessageLog, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("statlog: open message log %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	header := []string{"app", "terminal", "message", "created_at", "completed_at", "latency", "flits"}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("statlog: write message log header: %w", err)
	}
	return &MessageLog{file: f, writer: w}, nil
}

// Record appends a completion row for msg, completed at completedAt.
func (l *MessageLog) Record(msg *flow.Message, completedAt int64) error {
	txn := msg.Transaction
	row := []string{
		fmt.Sprintf("%d", txn.AppID()),
		fmt.Sprintf("%d", txn.TermID()),
		fmt.Sprintf("%d", txn.MsgID()),
		fmt.Sprintf("%d", msg.CreatedAt),
		fmt.Sprintf("%d", completedAt),
		fmt.Sprintf("%d", completedAt-msg.CreatedAt),
		fmt.Sprintf("%d", msg.Size()),
	}
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("statlog: write message log row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the underlying file.
func (l *MessageLog) Close() error {
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("statlog: flush message log: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("statlog: close message log: %w", err)
	}
	return nil
}
