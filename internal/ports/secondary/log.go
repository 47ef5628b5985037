package secondary

import "context"

// MigrationLogWriter defines the interface for writing durable
// migration history entries. Failures to log are never fatal to the
// operation being logged.
type MigrationLogWriter interface {
	// LogCreate logs the creation of a destination entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update of a destination entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDegraded logs a best-effort sub-step that failed without
	// aborting its parent item (featured image, term assignment,
	// mapping save).
	LogDegraded(ctx context.Context, entityType, entityID, step, detail string) error
}
