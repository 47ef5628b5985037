package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/adapters/sqlite"
	"github.com/example/wixport/internal/config"
	"github.com/example/wixport/internal/db"
	"github.com/example/wixport/internal/models"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration progress and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("wixport status")
			fmt.Println()

			cfg, err := config.LoadConfig()
			if err != nil {
				fmt.Println("Config: not found (run `wixport init`)")
			} else if cfg.ClientID == "" {
				fmt.Println("Config: present, no client id (run `wixport auth --client-id <id>`)")
			} else {
				fmt.Printf("Config: client id %s\n", cfg.ClientID)
				fmt.Printf("Uploads: %s (served at %s)\n", cfg.UploadsDir, cfg.UploadBaseURL)
			}

			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}
			fmt.Printf("Database: %s\n", dbPath)
			fmt.Println()

			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}

			ctx := context.Background()
			counts, err := sqlite.NewIdentityMapRepository(database).CountByType(ctx)
			if err != nil {
				return fmt.Errorf("failed to count mappings: %w", err)
			}

			fmt.Println("Migrated so far:")
			for _, contentType := range []string{
				models.ContentTypeCategory,
				models.ContentTypeTag,
				models.ContentTypePost,
			} {
				fmt.Printf("  %-10s %d\n", contentType, counts[contentType])
			}

			postCount, err := sqlite.NewPostRepository(database).Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count posts: %w", err)
			}
			fmt.Printf("\nPosts in local store: %d\n", postCount)

			failed, err := loadFailedPosts()
			if err == nil && len(failed) > 0 {
				color.New(color.FgYellow).Printf("Failed posts awaiting retry: %d (see `wixport failures`)\n", len(failed))
			}

			return nil
		},
	}
}
