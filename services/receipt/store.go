// Package receipt implements the durable receipt store: a single JSON
// document on local disk mapping normalized transaction hash to receipt,
// replaced atomically on every write. Writes are serialized in-process; there
// is no cross-process locking. That is a known scalability boundary of the
// single-instance deployment, not a bug.
package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"turjman/models"
	"turjman/utils"
)

// ErrNotFound is returned by Get when no receipt exists for a hash.
var ErrNotFound = errors.New("receipt not found")

const tmpPrefix = "receipts.tmp"

// Store is the receipt repository interface.
type Store interface {
	Add(r models.Receipt) (models.Receipt, error)
	Get(tx string) (models.Receipt, error)
	List() []models.Receipt
	ListStrict() ([]models.Receipt, error)
}

// FileStore persists the whole mapping as one JSON file. All writes funnel
// through the mutex so no two read-modify-write cycles interleave.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore creates the data directory and backing file if needed.
func NewFileStore(dataDir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, "receipts.json")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("seed receipts file: %w", err)
		}
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Add upserts a receipt keyed by its normalized hash. A sentinel "(none)"
// hash gets a synthetic unique key so failed-submission fallback records
// never collide.
func (s *FileStore) Add(r models.Receipt) (models.Receipt, error) {
	key := utils.NormalizeTxHash(r.Tx)
	if key == "" {
		key = fmt.Sprintf("%s-%d-%s", models.TxNone, time.Now().UnixMilli(), uuid.NewString()[:8])
	}
	r.Tx = key

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return models.Receipt{}, err
	}
	current[key] = r
	if err := s.replaceLocked(current); err != nil {
		return models.Receipt{}, err
	}

	s.logger.Info("RECEIPT_SAVED", zap.String("txHash", key), zap.Int("count", len(current)))
	return r, nil
}

// Get returns the stored receipt for a normalized hash.
func (s *FileStore) Get(tx string) (models.Receipt, error) {
	normalized := utils.NormalizeTxHash(tx)
	if normalized == "" {
		normalized = strings.ToLower(strings.TrimSpace(tx))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return models.Receipt{}, err
	}
	r, ok := current[normalized]
	if !ok {
		return models.Receipt{}, ErrNotFound
	}
	return r, nil
}

// List returns all stored receipts, tolerating a corrupted backing file by
// returning an empty list and warning instead of failing the caller.
func (s *FileStore) List() []models.Receipt {
	items, err := s.ListStrict()
	if err != nil {
		s.logger.Warn("Failed to parse receipts file", zap.Error(err))
		return []models.Receipt{}
	}
	return items
}

// ListStrict surfaces the parse error, for the store health check.
func (s *FileStore) ListStrict() ([]models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readLocked()
	if err != nil {
		return nil, err
	}
	items := make([]models.Receipt, 0, len(current))
	for _, r := range current {
		items = append(items, r)
	}
	return items, nil
}

func (s *FileStore) readLocked() (map[string]models.Receipt, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]models.Receipt{}, nil
		}
		return nil, fmt.Errorf("read receipts file: %w", err)
	}
	return decodeStore(raw)
}

// decodeStore accepts the current mapping layout and the legacy layout where
// the document is an ordered sequence of receipts. A sequence is converted to
// a mapping keyed by each entry's normalized hash; later entries overwrite
// earlier ones with the same hash.
func decodeStore(raw []byte) (map[string]models.Receipt, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]models.Receipt{}, nil
	}

	if trimmed[0] == '[' {
		var list []models.Receipt
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parse legacy receipts list: %w", err)
		}
		m := make(map[string]models.Receipt, len(list))
		for _, entry := range list {
			key := utils.NormalizeTxHash(entry.Tx)
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(entry.Tx))
			}
			if key == "" {
				continue
			}
			entry.Tx = key
			m[key] = entry
		}
		return m, nil
	}

	var m map[string]models.Receipt
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("parse receipts map: %w", err)
	}
	return m, nil
}

// replaceLocked writes the document to a uniquely-named temp file in the same
// directory and renames it over the canonical path, so a crash mid-write
// never corrupts the store.
func (s *FileStore) replaceLocked(m map[string]models.Receipt) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipts: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmpPath := filepath.Join(dir, fmt.Sprintf("%s.%d.%s.json", tmpPrefix, time.Now().UnixNano(), uuid.NewString()[:8]))
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp receipts file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace receipts file: %w", err)
	}
	return nil
}
