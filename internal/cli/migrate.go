package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/ports/primary"
	"github.com/example/wixport/internal/wire"
)

// MigrateCmd returns the migrate command with its subcommands
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate Wix blog content into the local store",
	}

	cmd.AddCommand(migrateAllCmd())
	cmd.AddCommand(migrateCategoriesCmd())
	cmd.AddCommand(migrateTagsCmd())
	cmd.AddCommand(migratePostsCmd())
	cmd.AddCommand(migrateBatchCmd())

	return cmd
}

func migrateAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Migrate categories, tags, and posts in one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Starting full migration (categories → tags → posts)")

			full, err := wire.MigrationService().MigrateAll(context.Background())
			if err != nil {
				return err
			}

			printResult("Categories", full.Categories)
			printResult("Tags", full.Tags)
			printResult("Posts", full.Posts)

			if full.Posts != nil && len(full.Posts.FailedItems) > 0 {
				if err := saveFailedPosts(full.Posts.FailedItems); err != nil {
					fmt.Printf("warning: could not persist failed posts: %v\n", err)
				} else {
					fmt.Printf("\n%d failed posts saved. Run `wixport failures` to inspect them.\n", len(full.Posts.FailedItems))
				}
			}

			for _, msg := range full.Errors {
				color.New(color.FgRed).Printf("✗ %s\n", msg)
			}
			if len(full.Errors) == 0 {
				color.New(color.FgGreen).Println("\n✓ Full migration complete")
			}

			return nil
		},
	}
}

func migrateCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Migrate blog categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.MigrationService().MigrateCategories(context.Background())
			if err != nil {
				return err
			}
			printResult("Categories", res)
			return nil
		},
	}
}

func migrateTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Migrate blog tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.MigrationService().MigrateTags(context.Background())
			if err != nil {
				return err
			}
			printResult("Tags", res)
			return nil
		},
	}
}

func migratePostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "Migrate blog posts with rich content and media",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, runErr := wire.MigrationService().MigratePosts(context.Background())

			// A halted run still carries partial progress worth showing.
			if res != nil {
				printResult("Posts", res)
				if len(res.FailedItems) > 0 {
					if err := saveFailedPosts(res.FailedItems); err != nil {
						fmt.Printf("warning: could not persist failed posts: %v\n", err)
					} else {
						fmt.Printf("\n%d failed posts saved. Run `wixport failures` to inspect them.\n", len(res.FailedItems))
					}
				}
			}

			return runErr
		},
	}
}

func migrateBatchCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Migrate a single batch of posts",
		Long: `Migrate one page of posts and print the paging state needed to
continue. Use this to drive a long migration one resumable step at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.MigrationService().MigratePostsBatch(context.Background(), primary.BatchRequest{
				Offset: offset,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Batch at offset %d (limit %d): %d posts\n", res.Offset, res.Limit, res.ProcessedInBatch)
			color.New(color.FgGreen).Printf("  created: %d\n", res.Created)
			color.New(color.FgCyan).Printf("  updated: %d\n", res.Updated)
			if res.Skipped > 0 {
				color.New(color.FgYellow).Printf("  skipped: %d\n", res.Skipped)
			}
			for _, msg := range res.Errors {
				color.New(color.FgRed).Printf("  ✗ %s\n", msg)
			}

			if len(res.FailedItems) > 0 {
				if err := saveFailedPosts(res.FailedItems); err != nil {
					fmt.Printf("warning: could not persist failed posts: %v\n", err)
				}
			}

			if res.HasMore {
				fmt.Printf("\nMore posts remain. Continue with:\n  wixport migrate batch --offset %d --limit %d\n", res.NextOffset, res.Limit)
			} else {
				color.New(color.FgGreen).Println("\n✓ No more posts to migrate")
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset to start from")
	cmd.Flags().IntVar(&limit, "limit", 100, "batch size (max 100)")

	return cmd
}

// printResult prints one per-collection summary block.
func printResult(name string, res *primary.MigrationResult) {
	if res == nil {
		color.New(color.FgRed).Printf("%s: did not run\n", name)
		return
	}

	fmt.Printf("\n%s (%d processed in %d batches):\n", name, res.TotalProcessed, res.BatchesProcessed)
	color.New(color.FgGreen).Printf("  created: %d\n", res.Created)
	color.New(color.FgCyan).Printf("  updated: %d\n", res.Updated)
	if res.Skipped > 0 {
		color.New(color.FgYellow).Printf("  skipped: %d\n", res.Skipped)
	}
	for _, msg := range res.Errors {
		color.New(color.FgRed).Printf("  ✗ %s\n", msg)
	}
}
