package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/config"
	"github.com/example/wixport/internal/wire"
)

// FailuresCmd returns the failures command
func FailuresCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Show posts that failed to migrate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				path, err := config.FailedPostsPath()
				if err != nil {
					return err
				}
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to clear failed posts: %w", err)
				}
				fmt.Println("✓ Failed-posts file cleared")
				return nil
			}

			items, err := loadFailedPosts()
			if err != nil {
				return err
			}

			fmt.Println(wire.MigrationService().DescribeFailures(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "delete the failed-posts file")

	return cmd
}
