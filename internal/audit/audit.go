// Package audit keeps an append-only record of product mutations. Ownership
// misses on update/delete look like plain no-op failures to the user, so this
// log is the only place they stay distinguishable.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/freshkeep/freshkeep/pkg/logger"
	"go.uber.org/zap"
)

// Action names a product mutation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Outcome records how the mutation resolved.
type Outcome string

const (
	OutcomeOK Outcome = "ok"
	// OutcomeNotFound marks an update/delete that matched no owned row,
	// either a missing product or a cross-tenant attempt.
	OutcomeNotFound Outcome = "not_found"
)

// Entry is one audit record, serialized as a JSON line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    Action    `json:"action"`
	ProductID string    `json:"product_id"`
	Outcome   Outcome   `json:"outcome"`
}

// Log is a mutex-guarded append-only file of audit entries.
type Log struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// Open creates or reopens the audit log at filePath.
func Open(filePath string) (*Log, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Log{
		filePath: filePath,
		file:     file,
	}, nil
}

// Record appends an entry and syncs it to disk.
func (l *Log) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("audit: failed to marshal entry",
			zap.String("product_id", entry.ProductID),
			zap.Error(err),
		)
		return err
	}

	if _, err := l.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("audit: failed to write entry",
			zap.String("product_id", entry.ProductID),
			zap.Error(err),
		)
		return err
	}

	if err := l.file.Sync(); err != nil {
		logger.Log.Error("audit: failed to sync to disk",
			zap.String("product_id", entry.ProductID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// ReadAll returns every entry in the log, oldest first. Malformed lines are
// skipped.
func (l *Log) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
