package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/wixport/internal/ports/secondary"
)

// AssetRepository implements secondary.AssetRepository with SQLite.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new SQLite asset repository.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create persists a new asset record and returns its local id.
func (r *AssetRepository) Create(ctx context.Context, asset *secondary.AssetRecord) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (filename, path, mime_type, source_url, width, height, variants)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		asset.Filename, asset.Path, asset.MimeType, asset.SourceURL,
		asset.Width, asset.Height, asset.Variants,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get asset id: %w", err)
	}

	return id, nil
}

// GetByID retrieves an asset by its local id.
func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*secondary.AssetRecord, error) {
	record, err := r.scanAsset(r.db.QueryRowContext(ctx,
		"SELECT id, filename, path, mime_type, source_url, width, height, variants, created_at FROM assets WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return record, nil
}

// FindBySourceURL returns the asset previously imported from the given
// source URL, or nil when none exists.
func (r *AssetRepository) FindBySourceURL(ctx context.Context, sourceURL string) (*secondary.AssetRecord, error) {
	record, err := r.scanAsset(r.db.QueryRowContext(ctx,
		"SELECT id, filename, path, mime_type, source_url, width, height, variants, created_at FROM assets WHERE source_url = ? ORDER BY id ASC LIMIT 1",
		sourceURL,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find asset by source url: %w", err)
	}

	return record, nil
}

func (r *AssetRepository) scanAsset(row rowScanner) (*secondary.AssetRecord, error) {
	var createdAt time.Time

	record := &secondary.AssetRecord{}
	err := row.Scan(&record.ID, &record.Filename, &record.Path, &record.MimeType,
		&record.SourceURL, &record.Width, &record.Height, &record.Variants, &createdAt)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}
