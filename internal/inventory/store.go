package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"foodflow/internal/models"
)

// Store owns the flat inventory snapshots and the rolling expiry history.
// It is pure data access; sampling and decision policy live elsewhere.
type Store struct {
	fullPath     string
	currentPath  string
	expiringPath string
	historyPath  string

	// historyMu serializes the read-modify-write of the history file so
	// two runs against the same store cannot lose an append.
	historyMu sync.Mutex
}

// NewStore creates a store rooted at dataDir using the conventional
// artifact names.
func NewStore(dataDir string) *Store {
	return &Store{
		fullPath:     filepath.Join(dataDir, "full_inventory.json"),
		currentPath:  filepath.Join(dataDir, "current_inventory.json"),
		expiringPath: filepath.Join(dataDir, "expiring_ingredients.json"),
		historyPath:  filepath.Join(dataDir, "recent_expiring_ingredients.json"),
	}
}

// LoadFullInventory reads the canonical inventory list. It fails with
// ErrDataNotFound when the source is absent or unreadable and with
// ErrMalformedRecord when any record is missing a name or carries a
// negative quantity.
func (s *Store) LoadFullInventory() ([]models.IngredientRecord, error) {
	data, err := os.ReadFile(s.fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDataNotFound, s.fullPath)
	}

	var records []models.IngredientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataNotFound, s.fullPath, err)
	}

	for i, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: record %d has no name", ErrMalformedRecord, i)
		}
		if r.Quantity < 0 {
			return nil, fmt.Errorf("%w: %q has negative quantity %.2f", ErrMalformedRecord, r.Name, r.Quantity)
		}
	}
	return records, nil
}

// WriteCurrentInventory persists the post-sampling inventory snapshot
func (s *Store) WriteCurrentInventory(records []models.IngredientRecord) error {
	return writeJSONAtomic(s.currentPath, records)
}

// WriteExpiringBatch persists the expiring batch for the current run
func (s *Store) WriteExpiringBatch(batch []models.ExpiringItem) error {
	if batch == nil {
		batch = []models.ExpiringItem{}
	}
	return writeJSONAtomic(s.expiringPath, batch)
}

// AppendHistory appends one batch to the rolling expiry history. The read,
// append and write happen as one critical section, and the final write is
// temp-file-then-rename so a crash mid-append never truncates committed
// entries.
func (s *Store) AppendHistory(batch []models.ExpiringItem) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	history, err := s.readHistory()
	if err != nil {
		return err
	}

	if batch == nil {
		batch = []models.ExpiringItem{}
	}
	history = append(history, models.ExpiryHistoryEntry{
		Timestamp: time.Now().UTC(),
		Batch:     batch,
	})

	return writeJSONAtomic(s.historyPath, history)
}

// History returns all committed history entries, oldest first. A missing
// history file yields an empty slice.
func (s *Store) History() ([]models.ExpiryHistoryEntry, error) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return s.readHistory()
}

func (s *Store) readHistory() ([]models.ExpiryHistoryEntry, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read expiry history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var history []models.ExpiryHistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse expiry history: %w", err)
	}
	return history, nil
}

// writeJSONAtomic marshals v and writes it via a temp file in the target
// directory followed by an atomic rename.
func writeJSONAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit %s: %w", path, err)
	}
	return nil
}
