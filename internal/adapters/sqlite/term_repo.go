package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/wixport/internal/ports/secondary"
)

// TermRepository implements secondary.TermRepository with SQLite.
type TermRepository struct {
	db *sql.DB
}

// NewTermRepository creates a new SQLite term repository.
func NewTermRepository(db *sql.DB) *TermRepository {
	return &TermRepository{db: db}
}

// Create persists a new term and returns its local id.
func (r *TermRepository) Create(ctx context.Context, term *secondary.TermRecord) (int64, error) {
	var desc sql.NullString
	if term.Description != "" {
		desc = sql.NullString{String: term.Description, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO terms (name, slug, description, taxonomy) VALUES (?, ?, ?, ?)",
		term.Name, term.Slug, desc, term.Taxonomy,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create term: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get term id: %w", err)
	}

	return id, nil
}

// Update updates an existing term.
func (r *TermRepository) Update(ctx context.Context, term *secondary.TermRecord) error {
	var desc sql.NullString
	if term.Description != "" {
		desc = sql.NullString{String: term.Description, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE terms SET name = ?, slug = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		term.Name, term.Slug, desc, term.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update term: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("term %d not found", term.ID)
	}

	return nil
}

// GetByID retrieves a term by its local id.
func (r *TermRepository) GetByID(ctx context.Context, id int64) (*secondary.TermRecord, error) {
	var (
		desc      sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.TermRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, description, taxonomy, created_at, updated_at FROM terms WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &record.Slug, &desc, &record.Taxonomy, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("term %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get term: %w", err)
	}

	record.Description = desc.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// List retrieves all terms of one taxonomy ordered by name.
func (r *TermRepository) List(ctx context.Context, taxonomy string) ([]*secondary.TermRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, slug, description, taxonomy, created_at, updated_at FROM terms WHERE taxonomy = ? ORDER BY name ASC",
		taxonomy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	defer rows.Close()

	var terms []*secondary.TermRecord
	for rows.Next() {
		var (
			desc      sql.NullString
			createdAt time.Time
			updatedAt time.Time
		)

		record := &secondary.TermRecord{}
		err := rows.Scan(&record.ID, &record.Name, &record.Slug, &desc, &record.Taxonomy, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}

		record.Description = desc.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		record.UpdatedAt = updatedAt.Format(time.RFC3339)

		terms = append(terms, record)
	}

	return terms, rows.Err()
}
