package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
)

// ledgerFile is the on-disk document: the full ordered transaction list
// plus a last-updated timestamp. The enum fields re-validate their
// labels on load via their UnmarshalJSON.
type ledgerFile struct {
	Transactions []core.Transaction `json:"transactions"`
	LastUpdated  time.Time          `json:"last_updated"`
}

// load reads the backing file into memory. A missing file is an empty
// ledger. A corrupt file either fails construction (strict) or is
// renamed to <path>.corrupt so nothing unreadable is silently discarded.
func (s *Store) load(strict bool) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger file: %w", err)
	}

	items, err := decodeLedger(data)
	if err != nil {
		if strict {
			return fmt.Errorf("load ledger %s: %w", s.path, err)
		}
		aside := s.path + ".corrupt"
		if renameErr := os.Rename(s.path, aside); renameErr != nil {
			slog.Warn("Could not preserve corrupt ledger file", "path", s.path, "error", renameErr)
		}
		slog.Warn("Ledger file is corrupt, starting empty",
			"path", s.path,
			"preserved_as", aside,
			"error", err)
		return nil
	}

	s.items = items
	for _, tx := range items {
		s.issued[tx.ID] = struct{}{}
	}
	return nil
}

func decodeLedger(data []byte) ([]core.Transaction, error) {
	var doc ledgerFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ledger document: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Transactions))
	for i := range doc.Transactions {
		tx := &doc.Transactions[i]
		if tx.Tags == nil {
			tx.Tags = []string{}
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d (%s): %w", i, tx.ID, err)
		}
		if tx.ID == "" {
			return nil, fmt.Errorf("transaction %d: missing id", i)
		}
		if _, dup := seen[tx.ID]; dup {
			return nil, fmt.Errorf("duplicate transaction id %s", tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}
	return doc.Transactions, nil
}

// persist writes the full collection atomically: serialize to a temp
// file in the same directory, then rename into place. Callers hold the
// store mutex.
func (s *Store) persist() error {
	doc := ledgerFile{
		Transactions: s.items,
		LastUpdated:  s.now().UTC(),
	}
	if doc.Transactions == nil {
		doc.Transactions = []core.Transaction{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
