package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/wixport/internal/config"
	"github.com/example/wixport/internal/models"
)

// loadFailedPosts reads the persisted failed-posts file. A missing file
// is an empty list, not an error.
func loadFailedPosts() ([]models.FailedItem, error) {
	path, err := config.FailedPostsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read failed-posts file: %w", err)
	}

	var items []models.FailedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse failed-posts file: %w", err)
	}
	return items, nil
}

// saveFailedPosts writes the failed-posts file, replacing any existing
// entry for the same wix id.
func saveFailedPosts(items []models.FailedItem) error {
	path, err := config.FailedPostsPath()
	if err != nil {
		return err
	}

	existing, err := loadFailedPosts()
	if err != nil {
		existing = nil
	}

	merged := make([]models.FailedItem, 0, len(existing)+len(items))
	replaced := make(map[string]bool, len(items))
	for _, item := range items {
		replaced[item.WixID] = true
	}
	for _, item := range existing {
		if !replaced[item.WixID] {
			merged = append(merged, item)
		}
	}
	merged = append(merged, items...)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal failed posts: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write failed-posts file: %w", err)
	}
	return nil
}

// removeFailedPost drops one entry from the failed-posts file.
func removeFailedPost(wixID string) error {
	items, err := loadFailedPosts()
	if err != nil {
		return err
	}

	remaining := make([]models.FailedItem, 0, len(items))
	for _, item := range items {
		if item.WixID != wixID {
			remaining = append(remaining, item)
		}
	}

	path, err := config.FailedPostsPath()
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	data, err := json.MarshalIndent(remaining, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal failed posts: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
