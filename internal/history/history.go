package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iishyfishyy/recall/internal/semcache"
)

const (
	HistoryFileName = "history.json"
)

// Entry represents a single answered (or failed) question
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Model     string    `json:"model,omitempty"`
	Hit       bool      `json:"hit"`
	Score     float64   `json:"score,omitempty"`
	RecordID  string    `json:"record_id,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// History manages the ask log
type History struct {
	Entries []Entry `json:"entries"`
}

// GetHistoryPath returns the path to the history file
func GetHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".recall", HistoryFileName), nil
}

// Load reads the history at path
func Load(path string) (*History, error) {
	// If history doesn't exist, return empty history
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &History{Entries: []Entry{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var hist History
	if err := json.Unmarshal(data, &hist); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	return &hist, nil
}

// Save writes the history to path
func (h *History) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// AddEntry adds a new entry to the history
func (h *History) AddEntry(entry Entry) {
	h.Entries = append(h.Entries, entry)
}

// Summary counts hits and misses across all entries
func (h *History) Summary() (hits, misses, failures int) {
	for _, e := range h.Entries {
		switch {
		case e.Error != "":
			failures++
		case e.Hit:
			hits++
		default:
			misses++
		}
	}
	return hits, misses, failures
}

// NewEntry creates a history entry for an ask outcome
func NewEntry(question string, res semcache.Result, askErr error) Entry {
	entry := Entry{
		Timestamp: time.Now(),
		Question:  question,
	}
	if askErr != nil {
		entry.Error = askErr.Error()
		return entry
	}
	entry.Model = res.Model
	entry.Hit = res.Hit
	entry.Score = res.Score
	entry.RecordID = res.Record.ID
	return entry
}
