package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/nocycle/pkg/core"
)

// GetImports returns the cached imports of a file. The second result is
// false when nothing is cached or the cached entry was made for different
// content.
func (s *SQLiteStore) GetImports(filePath, contentHash string) ([]core.Import, bool, error) {
	if s.db == nil {
		return nil, false, errNotOpened
	}

	var storedHash, payload string
	err := s.db.QueryRowContext(ctx(),
		`SELECT content_hash, imports FROM import_cache WHERE file_path = ?`,
		filePath,
	).Scan(&storedHash, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached imports: %w", err)
	}

	if storedHash != contentHash {
		s.logger.Debug("stale import cache entry", slog.String("path", filePath))
		return nil, false, nil
	}

	var imports []core.Import
	if err := json.Unmarshal([]byte(payload), &imports); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached imports for %s: %w", filePath, err)
	}
	return imports, true, nil
}

// PutImports stores the imports of a file, replacing any previous entry.
func (s *SQLiteStore) PutImports(filePath, contentHash string, imports []core.Import) error {
	if s.db == nil {
		return errNotOpened
	}
	if imports == nil {
		imports = []core.Import{}
	}

	payload, err := json.Marshal(imports)
	if err != nil {
		return fmt.Errorf("failed to encode imports for %s: %w", filePath, err)
	}

	_, err = s.db.ExecContext(ctx(),
		`INSERT INTO import_cache (file_path, content_hash, imports, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   imports = excluded.imports,
		   updated_at = excluded.updated_at`,
		filePath, contentHash, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache imports: %w", err)
	}
	return nil
}

// PruneImports deletes cache entries for files not listed in keep and
// returns how many were removed.
func (s *SQLiteStore) PruneImports(keep []string) (int, error) {
	if s.db == nil {
		return 0, errNotOpened
	}

	keepSet := make(map[string]bool, len(keep))
	for _, p := range keep {
		keepSet[p] = true
	}

	rows, err := s.db.QueryContext(ctx(), `SELECT file_path FROM import_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to list cached files: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan cached file: %w", err)
		}
		if !keepSet[p] {
			stale = append(stale, p)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("failed to list cached files: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, p := range stale {
		if _, err := tx.ExecContext(ctx(), `DELETE FROM import_cache WHERE file_path = ?`, p); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to prune %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	s.logger.Debug("pruned import cache", slog.Int("removed", len(stale)))
	return len(stale), nil
}
