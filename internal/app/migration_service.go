package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/example/wixport/internal/core/richtext"
	"github.com/example/wixport/internal/models"
	"github.com/example/wixport/internal/ports/primary"
	"github.com/example/wixport/internal/ports/secondary"
)

const (
	// defaultPageSize is the page size used for all collection fetches.
	defaultPageSize = 100

	// maxConsecutiveFailures is the circuit breaker for the post loop:
	// this many post failures in a row halt the entire run.
	maxConsecutiveFailures = 5

	// maxEmptyPages stops the post loop after this many empty pages in
	// a row, even when the provider still claims more results.
	maxEmptyPages = 3

	// maxPostOffset is the safety ceiling on pagination depth.
	maxPostOffset = 10000

	// maxContentLength caps stored post content; anything longer is cut
	// and marked with truncationSuffix.
	maxContentLength = 50000
	truncationSuffix = "...[content truncated]"

	// throttleEvery / throttlePause rate-limit the post loop.
	throttleEvery = 10
	throttlePause = 100 * time.Millisecond

	// Title display limits for error messages and the failure report.
	errorTitleLimit  = 50
	reportTitleLimit = 60
)

// MigrationServiceImpl implements the MigrationService interface.
type MigrationServiceImpl struct {
	client     secondary.BlogClient
	idMap      secondary.IdentityMapRepository
	terms      secondary.TermRepository
	posts      secondary.PostRepository
	logWriter  secondary.MigrationLogWriter
	transpiler *richtext.Transpiler
	assets     richtext.AssetResolver
	clientID   string

	// sleep is swappable so tests can run the throttle without waiting.
	sleep func(time.Duration)
}

// NewMigrationService creates a new MigrationService with injected dependencies.
func NewMigrationService(
	client secondary.BlogClient,
	idMap secondary.IdentityMapRepository,
	terms secondary.TermRepository,
	posts secondary.PostRepository,
	logWriter secondary.MigrationLogWriter,
	transpiler *richtext.Transpiler,
	assets richtext.AssetResolver,
	clientID string,
) *MigrationServiceImpl {
	return &MigrationServiceImpl{
		client:     client,
		idMap:      idMap,
		terms:      terms,
		posts:      posts,
		logWriter:  logWriter,
		transpiler: transpiler,
		assets:     assets,
		clientID:   clientID,
		sleep:      time.Sleep,
	}
}

// MigrateAll migrates categories, then tags, then posts. Terms go first
// so posts can resolve their term mappings.
func (s *MigrationServiceImpl) MigrateAll(ctx context.Context) (*primary.FullMigrationResult, error) {
	if err := s.client.Authenticate(ctx, s.clientID); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	full := &primary.FullMigrationResult{}

	categories, err := s.migrateCategories(ctx)
	if err != nil {
		full.Errors = append(full.Errors, fmt.Sprintf("categories: %v", err))
	}
	full.Categories = categories

	tags, err := s.migrateTags(ctx)
	if err != nil {
		full.Errors = append(full.Errors, fmt.Sprintf("tags: %v", err))
	}
	full.Tags = tags

	posts, err := s.migratePosts(ctx)
	full.Posts = posts
	if err != nil {
		full.Errors = append(full.Errors, fmt.Sprintf("posts: %v", err))
	}

	return full, nil
}

// MigrateCategories migrates all categories.
func (s *MigrationServiceImpl) MigrateCategories(ctx context.Context) (*primary.MigrationResult, error) {
	if err := s.client.Authenticate(ctx, s.clientID); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return s.migrateCategories(ctx)
}

// MigrateTags migrates all tags.
func (s *MigrationServiceImpl) MigrateTags(ctx context.Context) (*primary.MigrationResult, error) {
	if err := s.client.Authenticate(ctx, s.clientID); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return s.migrateTags(ctx)
}

// MigratePosts migrates all posts.
func (s *MigrationServiceImpl) MigratePosts(ctx context.Context) (*primary.MigrationResult, error) {
	if err := s.client.Authenticate(ctx, s.clientID); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return s.migratePosts(ctx)
}

func (s *MigrationServiceImpl) migrateCategories(ctx context.Context) (*primary.MigrationResult, error) {
	result := &primary.MigrationResult{}
	offset := 0
	hasMore := true

	for hasMore {
		page, err := s.client.FetchCategories(ctx, offset, defaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch categories at offset %d: %w", offset, err)
		}
		if len(page.Categories) == 0 {
			break
		}
		result.BatchesProcessed++

		for _, category := range page.Categories {
			result.TotalProcessed++
			if category.ID == "" || category.Label == "" {
				result.Skipped++
				continue
			}
			action, err := s.processCategory(ctx, &category)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("category %q: %v", category.Label, err))
				continue
			}
			if action == models.ActionCreated {
				result.Created++
			} else {
				result.Updated++
			}
		}

		// Categories carry an explicit continuation flag.
		hasMore = page.PagingMetadata != nil && page.PagingMetadata.HasNext
		offset += defaultPageSize
	}

	return result, nil
}

func (s *MigrationServiceImpl) migrateTags(ctx context.Context) (*primary.MigrationResult, error) {
	result := &primary.MigrationResult{}
	offset := 0
	hasMore := true

	for hasMore {
		page, err := s.client.FetchTags(ctx, offset, defaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tags at offset %d: %w", offset, err)
		}
		if len(page.Tags) == 0 {
			break
		}
		result.BatchesProcessed++

		for _, tag := range page.Tags {
			result.TotalProcessed++
			if tag.ID == "" || tag.Label == "" {
				result.Skipped++
				continue
			}
			action, err := s.processTag(ctx, &tag)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("tag %q: %v", tag.Label, err))
				continue
			}
			if action == models.ActionCreated {
				result.Created++
			} else {
				result.Updated++
			}
		}

		// Tags only report a total, so continuation is count-based.
		total := 0
		if page.MetaData != nil {
			total = page.MetaData.Total
		}
		offset += defaultPageSize
		hasMore = offset < total
	}

	return result, nil
}

func (s *MigrationServiceImpl) migratePosts(ctx context.Context) (*primary.MigrationResult, error) {
	result := &primary.MigrationResult{}
	offset := 0
	hasMore := true
	emptyPages := 0
	consecutiveFailures := 0

	for hasMore {
		page, err := s.client.FetchPosts(ctx, offset, defaultPageSize)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch posts at offset %d: %v", offset, err))
			break
		}
		if len(page.Posts) == 0 {
			emptyPages++
			if emptyPages >= maxEmptyPages {
				break
			}
			offset += defaultPageSize
			continue
		}
		emptyPages = 0
		result.BatchesProcessed++

		for idx := range page.Posts {
			post := &page.Posts[idx]
			result.TotalProcessed++

			if post.ID == "" || post.Title == "" {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("skipped post at offset %d: missing id or title", offset))
				result.FailedItems = append(result.FailedItems, models.FailedItem{
					WixID:         valueOr(post.ID, "unknown"),
					Title:         valueOr(post.Title, "No title"),
					Error:         "missing required fields (id or title)",
					RetryPossible: false,
				})
				continue
			}

			action, _, err := s.processPost(ctx, post)
			if err != nil {
				consecutiveFailures++
				result.Errors = append(result.Errors, fmt.Sprintf("post %s (%q): %v", post.ID, truncate(post.Title, errorTitleLimit), err))
				result.FailedItems = append(result.FailedItems, models.FailedItem{
					WixID:         post.ID,
					Title:         post.Title,
					Error:         err.Error(),
					RetryPossible: isRetryable(err),
					Payload:       post,
				})
				if consecutiveFailures >= maxConsecutiveFailures {
					result.Errors = append(result.Errors, fmt.Sprintf("critical: halting migration after %d consecutive post failures", maxConsecutiveFailures))
					return result, fmt.Errorf("%w (last error: %v)", ErrRunHalted, err)
				}
				continue
			}
			consecutiveFailures = 0

			if action == models.ActionCreated {
				result.Created++
			} else {
				result.Updated++
			}
			if result.TotalProcessed%throttleEvery == 0 {
				s.sleep(throttlePause)
			}
		}

		if page.PagingMetadata != nil {
			hasMore = page.PagingMetadata.HasNext
		} else {
			hasMore = len(page.Posts) >= defaultPageSize
		}
		offset += defaultPageSize
		if offset > maxPostOffset {
			result.Errors = append(result.Errors, fmt.Sprintf("safety limit reached: stopped paging at offset %d", offset))
			break
		}
	}

	return result, nil
}

// MigratePostsBatch processes exactly one page of posts. The caller
// drives the loop across invocations using NextOffset and HasMore, so
// neither the circuit breaker nor the throttle apply here.
func (s *MigrationServiceImpl) MigratePostsBatch(ctx context.Context, req primary.BatchRequest) (*primary.BatchResult, error) {
	if err := s.client.Authenticate(ctx, s.clientID); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	result := &primary.BatchResult{
		Offset:     offset,
		Limit:      limit,
		NextOffset: offset + limit,
	}

	page, err := s.client.FetchPosts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts at offset %d: %w", offset, err)
	}
	result.ProcessedInBatch = len(page.Posts)
	result.HasMore = len(page.Posts) >= limit

	for idx := range page.Posts {
		post := &page.Posts[idx]

		if post.ID == "" || post.Title == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("skipped post at offset %d: missing id or title", offset))
			result.FailedItems = append(result.FailedItems, models.FailedItem{
				WixID:         valueOr(post.ID, "unknown"),
				Title:         valueOr(post.Title, "No title"),
				Error:         "missing required fields (id or title)",
				RetryPossible: false,
			})
			continue
		}

		action, _, err := s.processPost(ctx, post)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("post %s (%q): %v", post.ID, truncate(post.Title, errorTitleLimit), err))
			result.FailedItems = append(result.FailedItems, models.FailedItem{
				WixID:         post.ID,
				Title:         post.Title,
				Error:         err.Error(),
				RetryPossible: isRetryable(err),
				Payload:       post,
			})
			continue
		}

		if action == models.ActionCreated {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// RetryFailedPost re-runs the per-item migration once for a previously
// captured payload.
func (s *MigrationServiceImpl) RetryFailedPost(ctx context.Context, payload *models.WixPost) (*primary.RetryResult, error) {
	if payload == nil || payload.ID == "" || payload.Title == "" {
		return nil, fmt.Errorf("retry payload is missing required post data")
	}

	action, localID, err := s.processPost(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("retry failed for post %s: %w", payload.ID, err)
	}

	return &primary.RetryResult{
		Success: true,
		LocalID: localID,
		Action:  action,
		WixID:   payload.ID,
		Title:   payload.Title,
	}, nil
}

// DescribeFailures renders the failure report shown after a run with
// failed posts.
func (s *MigrationServiceImpl) DescribeFailures(items []models.FailedItem) string {
	if len(items) == 0 {
		return "No failed posts to report."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FAILED POSTS SUMMARY (%d posts failed):\n\n", len(items))
	for i, item := range items {
		marker := "[NO RETRY - DATA ISSUE]"
		if item.RetryPossible {
			marker = "[RETRY POSSIBLE]"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, marker)
		fmt.Fprintf(&b, "   Wix ID: %s\n", item.WixID)
		fmt.Fprintf(&b, "   Title: %s\n", truncate(item.Title, reportTitleLimit))
		fmt.Fprintf(&b, "   Error: %s\n\n", item.Error)
	}
	b.WriteString("MANUAL MIGRATION INSTRUCTIONS:\n")
	b.WriteString("1. Copy the Wix ID of failed posts\n")
	b.WriteString("2. Use the retry command to attempt manual migration\n")
	b.WriteString("3. For posts marked [NO RETRY], check the original Wix data integrity\n")
	return b.String()
}

func (s *MigrationServiceImpl) processCategory(ctx context.Context, category *models.WixCategory) (string, error) {
	localID, found, err := s.idMap.Lookup(ctx, category.ID, models.ContentTypeCategory)
	if err != nil {
		return "", fmt.Errorf("failed to look up category mapping: %w", err)
	}

	slugSource := category.Slug
	if slugSource == "" {
		slugSource = category.Label
	}
	record := &secondary.TermRecord{
		Name:        strings.TrimSpace(category.Label),
		Slug:        slugify(slugSource),
		Description: category.Description,
		Taxonomy:    secondary.TaxonomyCategory,
	}

	if found {
		record.ID = localID
		if err := s.terms.Update(ctx, record); err != nil {
			return "", fmt.Errorf("failed to update category: %w", err)
		}
		return models.ActionUpdated, nil
	}

	id, err := s.terms.Create(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	if err := s.idMap.Save(ctx, category.ID, id, models.ContentTypeCategory); err != nil {
		log.Printf("warning: failed to save category mapping for %s: %v", category.ID, err)
		_ = s.logWriter.LogDegraded(ctx, models.ContentTypeCategory, category.ID, "mapping_save", err.Error())
	}
	if err := s.logWriter.LogCreate(ctx, models.ContentTypeCategory, category.ID); err != nil {
		log.Printf("warning: failed to log category creation: %v", err)
	}
	return models.ActionCreated, nil
}

func (s *MigrationServiceImpl) processTag(ctx context.Context, tag *models.WixTag) (string, error) {
	localID, found, err := s.idMap.Lookup(ctx, tag.ID, models.ContentTypeTag)
	if err != nil {
		return "", fmt.Errorf("failed to look up tag mapping: %w", err)
	}

	slugSource := tag.Slug
	if slugSource == "" {
		slugSource = tag.Label
	}
	record := &secondary.TermRecord{
		Name:     strings.TrimSpace(tag.Label),
		Slug:     slugify(slugSource),
		Taxonomy: secondary.TaxonomyPostTag,
	}

	if found {
		record.ID = localID
		if err := s.terms.Update(ctx, record); err != nil {
			return "", fmt.Errorf("failed to update tag: %w", err)
		}
		return models.ActionUpdated, nil
	}

	id, err := s.terms.Create(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create tag: %w", err)
	}
	if err := s.idMap.Save(ctx, tag.ID, id, models.ContentTypeTag); err != nil {
		log.Printf("warning: failed to save tag mapping for %s: %v", tag.ID, err)
		_ = s.logWriter.LogDegraded(ctx, models.ContentTypeTag, tag.ID, "mapping_save", err.Error())
	}
	if err := s.logWriter.LogCreate(ctx, models.ContentTypeTag, tag.ID); err != nil {
		log.Printf("warning: failed to log tag creation: %v", err)
	}
	return models.ActionCreated, nil
}

// processPost migrates one post. The returned error is wrapped as
// non-retryable only when the source data itself is unusable.
func (s *MigrationServiceImpl) processPost(ctx context.Context, post *models.WixPost) (string, int64, error) {
	mappedID, found, err := s.idMap.Lookup(ctx, post.ID, models.ContentTypePost)
	if err != nil {
		return "", 0, fmt.Errorf("failed to look up post mapping: %w", err)
	}

	content := s.transpiler.Transpile(ctx, post.RichContent)
	if content == "" {
		content = strings.TrimSpace(post.Excerpt)
		if content == "" {
			return "", 0, nonRetryable("no content available: rich content and excerpt are both empty")
		}
	}
	if len(content) > maxContentLength {
		content = content[:maxContentLength] + truncationSuffix
	}

	status := secondary.PostStatusDraft
	if post.FirstPublishedDate != "" {
		status = secondary.PostStatusPublish
	}

	record := &secondary.PostRecord{
		Title:         strings.TrimSpace(post.Title),
		Content:       content,
		Excerpt:       strings.TrimSpace(post.Excerpt),
		Status:        status,
		PublishedAt:   post.FirstPublishedDate,
		ModifiedAt:    post.LastPublishedDate,
		WixID:         post.ID,
		WixSlug:       post.Slug,
		Featured:      post.Featured,
		Pinned:        post.Pinned,
		MinutesToRead: post.MinutesToRead,
		Hashtags:      strings.Join(post.Hashtags, ","),
	}

	var localID int64
	action := models.ActionUpdated
	needMapping := false

	if found {
		record.ID = mappedID
		if err := s.posts.Update(ctx, record); err != nil {
			return "", 0, fmt.Errorf("failed to update post: %w", err)
		}
		localID = mappedID
	} else {
		// Guard against re-creating a post whose mapping was lost.
		existing, err := s.posts.FindByTitle(ctx, record.Title)
		if err != nil {
			return "", 0, fmt.Errorf("failed to check for duplicate title: %w", err)
		}
		if existing != nil {
			record.ID = existing.ID
			if err := s.posts.Update(ctx, record); err != nil {
				return "", 0, fmt.Errorf("failed to update post: %w", err)
			}
			localID = existing.ID
			needMapping = true
		} else {
			record.Slug = postSlug(record.Title, post.ID)
			id, err := s.posts.Create(ctx, record)
			if err != nil {
				return "", 0, fmt.Errorf("failed to create post: %w", err)
			}
			localID = id
			action = models.ActionCreated
			needMapping = true
			if err := s.logWriter.LogCreate(ctx, models.ContentTypePost, post.ID); err != nil {
				log.Printf("warning: failed to log post creation: %v", err)
			}
		}
	}

	s.assignTerms(ctx, localID, post.ID, post.CategoryIDs, models.ContentTypeCategory, secondary.TaxonomyCategory)
	s.assignTerms(ctx, localID, post.ID, post.TagIDs, models.ContentTypeTag, secondary.TaxonomyPostTag)
	s.setFeaturedImage(ctx, localID, post.ID, post.CoverMedia)

	if needMapping {
		if err := s.idMap.Save(ctx, post.ID, localID, models.ContentTypePost); err != nil {
			log.Printf("warning: failed to save post mapping for %s: %v", post.ID, err)
			_ = s.logWriter.LogDegraded(ctx, models.ContentTypePost, post.ID, "mapping_save", err.Error())
		}
	}

	return action, localID, nil
}

// assignTerms resolves remote term ids through the identity map and
// replaces the post's associations for one taxonomy. Unmapped ids are
// skipped; failures degrade the item without failing it.
func (s *MigrationServiceImpl) assignTerms(ctx context.Context, postID int64, wixID string, remoteIDs []string, contentType, taxonomy string) {
	if len(remoteIDs) == 0 {
		return
	}
	termIDs := make([]int64, 0, len(remoteIDs))
	for _, remoteID := range remoteIDs {
		id, found, err := s.idMap.Lookup(ctx, remoteID, contentType)
		if err != nil || !found {
			continue
		}
		termIDs = append(termIDs, id)
	}
	if len(termIDs) == 0 {
		return
	}
	if err := s.posts.ReplaceTerms(ctx, postID, taxonomy, termIDs); err != nil {
		log.Printf("warning: failed to assign %s terms for post %s: %v", taxonomy, wixID, err)
		_ = s.logWriter.LogDegraded(ctx, models.ContentTypePost, wixID, "term_assignment", fmt.Sprintf("%s: %v", taxonomy, err))
	}
}

// setFeaturedImage imports the cover image and attaches it to the post.
// Failures degrade the item without failing it.
func (s *MigrationServiceImpl) setFeaturedImage(ctx context.Context, postID int64, wixID string, cover json.RawMessage) {
	if len(cover) == 0 || s.assets == nil {
		return
	}
	url := richtext.ExtractCoverURL(cover)
	if url == "" {
		return
	}
	asset, err := s.assets.ImportImage(ctx, url)
	if err != nil {
		log.Printf("warning: failed to import cover image for post %s: %v", wixID, err)
		_ = s.logWriter.LogDegraded(ctx, models.ContentTypePost, wixID, "featured_image", fmt.Sprintf("%s: %v", url, err))
		return
	}
	if err := s.posts.SetFeaturedAsset(ctx, postID, asset.ID); err != nil {
		log.Printf("warning: failed to set featured image for post %s: %v", wixID, err)
		_ = s.logWriter.LogDegraded(ctx, models.ContentTypePost, wixID, "featured_image", err.Error())
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases and collapses everything non-alphanumeric to
// single hyphens.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// postSlug builds a collision-resistant slug from the title and a
// prefix of the source id.
func postSlug(title, wixID string) string {
	suffix := wixID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	base := slugify(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

var _ primary.MigrationService = (*MigrationServiceImpl)(nil)
