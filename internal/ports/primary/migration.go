// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which external callers drive the migration.
package primary

import (
	"context"

	"github.com/example/wixport/internal/models"
)

// MigrationService defines the primary port for the migration pipeline.
// Callers must serialize invocations: the pipeline is single-process
// and sequential, and concurrent runs against the same destination
// store are unsafe.
type MigrationService interface {
	// MigrateAll migrates categories, then tags, then posts. Term
	// migrations run first because posts reference their mappings.
	MigrateAll(ctx context.Context) (*FullMigrationResult, error)

	// MigrateCategories migrates all categories, paging until the
	// provider signals the end.
	MigrateCategories(ctx context.Context) (*MigrationResult, error)

	// MigrateTags migrates all tags, paging until the provider's
	// reported total is reached.
	MigrateTags(ctx context.Context) (*MigrationResult, error)

	// MigratePosts migrates all posts, paging until the provider
	// signals the end or a circuit breaker trips.
	MigratePosts(ctx context.Context) (*MigrationResult, error)

	// MigratePostsBatch processes a single page of posts and returns
	// enough state for the caller to drive the loop across
	// independent invocations.
	MigratePostsBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)

	// RetryFailedPost re-runs the per-item migration once for a
	// previously captured payload, outside the batch loop.
	RetryFailedPost(ctx context.Context, payload *models.WixPost) (*RetryResult, error)

	// DescribeFailures renders a human-readable report of failed items.
	DescribeFailures(items []models.FailedItem) string
}

// MigrationResult is the outcome of one full paged run over a
// collection. It is produced fresh per call; the only cross-run state
// is the identity map.
type MigrationResult struct {
	Created          int
	Updated          int
	Skipped          int
	Errors           []string
	FailedItems      []models.FailedItem
	TotalProcessed   int
	BatchesProcessed int
}

// FullMigrationResult aggregates the three per-collection runs.
type FullMigrationResult struct {
	Categories *MigrationResult
	Tags       *MigrationResult
	Posts      *MigrationResult
	Errors     []string
}

// BatchRequest contains paging parameters for a single-batch call.
type BatchRequest struct {
	Offset int
	Limit  int
}

// BatchResult is the outcome of one resumable batch call.
type BatchResult struct {
	Created          int
	Updated          int
	Skipped          int
	Errors           []string
	FailedItems      []models.FailedItem
	ProcessedInBatch int
	Offset           int
	Limit            int
	NextOffset       int
	HasMore          bool
}

// RetryResult is the outcome of a manual single-item retry.
type RetryResult struct {
	Success bool
	LocalID int64
	Action  string
	WixID   string
	Title   string
}
