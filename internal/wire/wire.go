// Package wire provides dependency injection for the wixport application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/wixport/internal/adapters/sqlite"
	"github.com/example/wixport/internal/adapters/wix"
	"github.com/example/wixport/internal/app"
	"github.com/example/wixport/internal/config"
	"github.com/example/wixport/internal/core/assets"
	"github.com/example/wixport/internal/core/richtext"
	"github.com/example/wixport/internal/db"
	"github.com/example/wixport/internal/ports/primary"
)

var (
	migrationService primary.MigrationService
	once             sync.Once
)

// MigrationService returns the singleton MigrationService instance.
func MigrationService() primary.MigrationService {
	once.Do(initServices)
	return migrationService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config (run `wixport init` first): %v", err)
	}
	if cfg.ClientID == "" {
		log.Fatalf("no client id configured (run `wixport auth --client-id <id>`)")
	}

	// Get database connection
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	idMapRepo := sqlite.NewIdentityMapRepository(database)
	termRepo := sqlite.NewTermRepository(database)
	postRepo := sqlite.NewPostRepository(database)
	assetRepo := sqlite.NewAssetRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(database)

	// Remote client and media importer
	client := wix.NewClient()
	importer := assets.NewImporter(assetRepo, cfg.UploadsDir, cfg.UploadBaseURL)
	transpiler := richtext.NewTranspiler(importer)

	// Create services (primary ports implementation)
	migrationService = app.NewMigrationService(
		client, idMapRepo, termRepo, postRepo, logWriter,
		transpiler, importer, cfg.ClientID,
	)
}
