package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/config"
	"github.com/example/wixport/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the wixport database",
		Long:  `Initialize the wixport database at ~/.wixport/wixport.db with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing wixport database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			fmt.Println("✓ Config file created at ~/.wixport/config.json")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  wixport auth --client-id <your-wix-client-id>")
			fmt.Println("  wixport migrate all")

			return nil
		},
	}
}

// initConfig creates the initial config.json file if missing.
func initConfig() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, "config.json")); err == nil {
		return nil // Already exists, skip
	}

	return config.SaveConfig(&config.Config{Version: "1.0"})
}
