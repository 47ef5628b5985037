package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/wixport/internal/ports/secondary"
)

// PostRepository implements secondary.PostRepository with SQLite.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLite post repository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create persists a new post and returns its local id.
func (r *PostRepository) Create(ctx context.Context, post *secondary.PostRecord) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (title, content, excerpt, slug, status, published_at, modified_at,
			wix_id, wix_slug, featured, pinned, minutes_to_read, hashtags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Title, post.Content, post.Excerpt, post.Slug, post.Status,
		nullString(post.PublishedAt), nullString(post.ModifiedAt),
		nullString(post.WixID), nullString(post.WixSlug),
		post.Featured, post.Pinned, post.MinutesToRead, post.Hashtags,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get post id: %w", err)
	}

	return id, nil
}

// Update updates an existing post. The slug is left untouched so that
// destination URLs stay stable across re-migrations.
func (r *PostRepository) Update(ctx context.Context, post *secondary.PostRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, excerpt = ?, status = ?,
			published_at = ?, modified_at = ?, wix_id = ?, wix_slug = ?,
			featured = ?, pinned = ?, minutes_to_read = ?, hashtags = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		post.Title, post.Content, post.Excerpt, post.Status,
		nullString(post.PublishedAt), nullString(post.ModifiedAt),
		nullString(post.WixID), nullString(post.WixSlug),
		post.Featured, post.Pinned, post.MinutesToRead, post.Hashtags,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("post %d not found", post.ID)
	}

	return nil
}

// GetByID retrieves a post by its local id.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*secondary.PostRecord, error) {
	record, err := r.scanPost(r.db.QueryRowContext(ctx,
		selectPostColumns+" FROM posts WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return record, nil
}

// FindByTitle returns the first post with an identical title, or nil.
func (r *PostRepository) FindByTitle(ctx context.Context, title string) (*secondary.PostRecord, error) {
	record, err := r.scanPost(r.db.QueryRowContext(ctx,
		selectPostColumns+" FROM posts WHERE title = ? ORDER BY id ASC LIMIT 1", title,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by title: %w", err)
	}

	return record, nil
}

// ReplaceTerms replaces a post's term associations for one taxonomy.
func (r *PostRepository) ReplaceTerms(ctx context.Context, postID int64, taxonomy string, termIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM post_terms WHERE post_id = ?
		 AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`,
		postID, taxonomy,
	)
	if err != nil {
		return fmt.Errorf("failed to clear post terms: %w", err)
	}

	for _, termID := range termIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO post_terms (post_id, term_id) VALUES (?, ?)",
			postID, termID,
		)
		if err != nil {
			return fmt.Errorf("failed to assign term %d: %w", termID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit term assignment: %w", err)
	}

	return nil
}

// SetFeaturedAsset attaches an imported asset as the post's featured image.
func (r *PostRepository) SetFeaturedAsset(ctx context.Context, postID, assetID int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE posts SET featured_asset_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		assetID, postID,
	)
	if err != nil {
		return fmt.Errorf("failed to set featured asset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("post %d not found", postID)
	}

	return nil
}

// Count returns the number of stored posts.
func (r *PostRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

const selectPostColumns = `SELECT id, title, content, excerpt, slug, status,
	published_at, modified_at, featured_asset_id, wix_id, wix_slug,
	featured, pinned, minutes_to_read, hashtags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostRepository) scanPost(row rowScanner) (*secondary.PostRecord, error) {
	var (
		publishedAt   sql.NullTime
		modifiedAt    sql.NullTime
		featuredAsset sql.NullInt64
		wixID         sql.NullString
		wixSlug       sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
	)

	record := &secondary.PostRecord{}
	err := row.Scan(&record.ID, &record.Title, &record.Content, &record.Excerpt,
		&record.Slug, &record.Status, &publishedAt, &modifiedAt, &featuredAsset,
		&wixID, &wixSlug, &record.Featured, &record.Pinned, &record.MinutesToRead,
		&record.Hashtags, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid {
		record.PublishedAt = publishedAt.Time.Format(time.RFC3339)
	}
	if modifiedAt.Valid {
		record.ModifiedAt = modifiedAt.Time.Format(time.RFC3339)
	}
	record.FeaturedAssetID = featuredAsset.Int64
	record.WixID = wixID.String
	record.WixSlug = wixSlug.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
