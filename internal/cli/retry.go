package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/wire"
)

// RetryCmd returns the retry command
func RetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <wix-id>",
		Short: "Retry a previously failed post",
		Long: `Re-run the migration for one post captured in the failed-posts file.
Use "wixport failures" to list failed posts and their Wix ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wixID := args[0]

			items, err := loadFailedPosts()
			if err != nil {
				return err
			}

			for _, item := range items {
				if item.WixID != wixID {
					continue
				}
				if item.Payload == nil {
					return fmt.Errorf("no stored payload for post %s; re-run the migration instead", wixID)
				}
				if !item.RetryPossible {
					color.New(color.FgYellow).Printf("post %s is marked as a data issue; retrying anyway\n", wixID)
				}

				res, err := wire.MigrationService().RetryFailedPost(context.Background(), item.Payload)
				if err != nil {
					return err
				}

				if err := removeFailedPost(wixID); err != nil {
					fmt.Printf("warning: could not update failed-posts file: %v\n", err)
				}
				color.New(color.FgGreen).Printf("✓ %s post %q (local id %d)\n", res.Action, res.Title, res.LocalID)
				return nil
			}

			return fmt.Errorf("no failed post with wix id %s", wixID)
		},
	}
}
