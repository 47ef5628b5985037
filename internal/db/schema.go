package db

// SchemaSQL is the complete schema for fresh wixport installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests
// use this schema via GetSchemaSQL(): if repository code references a
// column that doesn't exist here, tests fail immediately with
// "no such column" instead of drifting silently.
//
// When adding new columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Identity map: one (wix_id, content_type) pair maps to exactly one local id.
CREATE TABLE IF NOT EXISTS id_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	wix_id TEXT NOT NULL,
	local_id INTEGER NOT NULL,
	content_type TEXT NOT NULL CHECK(content_type IN ('category', 'tag', 'post', 'asset')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(wix_id, content_type)
);

CREATE INDEX IF NOT EXISTS idx_id_mappings_local_id ON id_mappings(local_id);
CREATE INDEX IF NOT EXISTS idx_id_mappings_content_type ON id_mappings(content_type);

-- Terms (categories and tags, one table per the destination taxonomy model)
CREATE TABLE IF NOT EXISTS terms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	description TEXT,
	taxonomy TEXT NOT NULL CHECK(taxonomy IN ('category', 'post_tag')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(slug, taxonomy)
);

-- Posts, with Wix provenance columns
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	excerpt TEXT NOT NULL DEFAULT '',
	slug TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL CHECK(status IN ('publish', 'draft')) DEFAULT 'draft',
	published_at DATETIME,
	modified_at DATETIME,
	featured_asset_id INTEGER REFERENCES assets(id),
	wix_id TEXT,
	wix_slug TEXT,
	featured INTEGER NOT NULL DEFAULT 0,
	pinned INTEGER NOT NULL DEFAULT 0,
	minutes_to_read INTEGER NOT NULL DEFAULT 0,
	hashtags TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_posts_title ON posts(title);

-- Post/term associations, replaced wholesale per taxonomy on assignment
CREATE TABLE IF NOT EXISTS post_terms (
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
	PRIMARY KEY (post_id, term_id)
);

-- Imported media, deduplicated by source_url
CREATE TABLE IF NOT EXISTS assets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	path TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	source_url TEXT NOT NULL,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	variants TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_assets_source_url ON assets(source_url);

-- Durable migration history (creates, updates, degraded sub-steps)
CREATE TABLE IF NOT EXISTS migration_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh install and runs pending
// migrations otherwise.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Fresh install - create the schema directly and mark all
		// migrations as applied so they never re-run.
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for v := 1; v <= latestSchemaVersion; v++ {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the canonical schema for use in tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
