package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// LogWriterAdapter implements secondary.MigrationLogWriter by appending
// rows to the migration_log table.
type LogWriterAdapter struct {
	db *sql.DB
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(db *sql.DB) *LogWriterAdapter {
	return &LogWriterAdapter{db: db}
}

// LogCreate logs the creation of a destination entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update of a destination entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDegraded logs a best-effort sub-step that failed without aborting
// its parent item.
func (w *LogWriterAdapter) LogDegraded(ctx context.Context, entityType, entityID, step, detail string) error {
	return w.writeLog(ctx, entityType, entityID, "degraded", step, "", detail)
}

func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO migration_log (entity_type, entity_id, action, field_name, old_value, new_value)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entityType, entityID, action, fieldName, oldValue, newValue,
	)
	if err != nil {
		return fmt.Errorf("failed to write migration log: %w", err)
	}

	return nil
}
