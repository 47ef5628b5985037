// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// IdentityMapRepository implements secondary.IdentityMapRepository with SQLite.
type IdentityMapRepository struct {
	db *sql.DB
}

// NewIdentityMapRepository creates a new SQLite identity map repository.
func NewIdentityMapRepository(db *sql.DB) *IdentityMapRepository {
	return &IdentityMapRepository{db: db}
}

// Lookup returns the local id mapped to (wixID, contentType).
func (r *IdentityMapRepository) Lookup(ctx context.Context, wixID, contentType string) (int64, bool, error) {
	var localID int64
	err := r.db.QueryRowContext(ctx,
		"SELECT local_id FROM id_mappings WHERE wix_id = ? AND content_type = ?",
		wixID, contentType,
	).Scan(&localID)

	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up mapping: %w", err)
	}

	return localID, true, nil
}

// Save upserts the mapping keyed by (wixID, contentType).
func (r *IdentityMapRepository) Save(ctx context.Context, wixID string, localID int64, contentType string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO id_mappings (wix_id, local_id, content_type) VALUES (?, ?, ?)
		 ON CONFLICT(wix_id, content_type) DO UPDATE SET local_id = excluded.local_id, updated_at = CURRENT_TIMESTAMP`,
		wixID, localID, contentType,
	)
	if err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}

	return nil
}

// LookupByLocalID returns the wix id mapped to a local id.
func (r *IdentityMapRepository) LookupByLocalID(ctx context.Context, localID int64, contentType string) (string, bool, error) {
	var wixID string
	err := r.db.QueryRowContext(ctx,
		"SELECT wix_id FROM id_mappings WHERE local_id = ? AND content_type = ?",
		localID, contentType,
	).Scan(&wixID)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up mapping by local id: %w", err)
	}

	return wixID, true, nil
}

// CountByType returns mapping counts keyed by content type.
func (r *IdentityMapRepository) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT content_type, COUNT(*) FROM id_mappings GROUP BY content_type",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count mappings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var contentType string
		var count int
		if err := rows.Scan(&contentType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan mapping count: %w", err)
		}
		counts[contentType] = count
	}

	return counts, rows.Err()
}
