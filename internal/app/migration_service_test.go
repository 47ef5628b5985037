package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wixport/internal/core/richtext"
	"github.com/example/wixport/internal/models"
	"github.com/example/wixport/internal/ports/primary"
	"github.com/example/wixport/internal/ports/secondary"
)

// --- mocks ---

type postFetch struct {
	page *secondary.PostPage
	err  error
}

type mockBlogClient struct {
	authErr   error
	authCalls int
	calls     []string

	categories []*secondary.CategoryPage
	catErr     error
	catIdx     int

	tags   []*secondary.TagPage
	tagErr error
	tagIdx int

	postFetches []postFetch
	postPageFn  func(offset, limit int) (*secondary.PostPage, error)
	postIdx     int
	postOffsets []int
}

func (m *mockBlogClient) Authenticate(ctx context.Context, clientID string) error {
	m.authCalls++
	return m.authErr
}

func (m *mockBlogClient) FetchCategories(ctx context.Context, offset, limit int) (*secondary.CategoryPage, error) {
	m.calls = append(m.calls, "categories")
	if m.catErr != nil {
		return nil, m.catErr
	}
	if m.catIdx >= len(m.categories) {
		return &secondary.CategoryPage{}, nil
	}
	page := m.categories[m.catIdx]
	m.catIdx++
	return page, nil
}

func (m *mockBlogClient) FetchTags(ctx context.Context, offset, limit int) (*secondary.TagPage, error) {
	m.calls = append(m.calls, "tags")
	if m.tagErr != nil {
		return nil, m.tagErr
	}
	if m.tagIdx >= len(m.tags) {
		return &secondary.TagPage{}, nil
	}
	page := m.tags[m.tagIdx]
	m.tagIdx++
	return page, nil
}

func (m *mockBlogClient) FetchPosts(ctx context.Context, offset, limit int) (*secondary.PostPage, error) {
	m.calls = append(m.calls, "posts")
	m.postOffsets = append(m.postOffsets, offset)
	if m.postPageFn != nil {
		return m.postPageFn(offset, limit)
	}
	if m.postIdx >= len(m.postFetches) {
		return &secondary.PostPage{}, nil
	}
	fetch := m.postFetches[m.postIdx]
	m.postIdx++
	return fetch.page, fetch.err
}

type memIdentityMap struct {
	m       map[string]int64
	saveErr error
}

func newMemIdentityMap() *memIdentityMap {
	return &memIdentityMap{m: make(map[string]int64)}
}

func mapKey(wixID, contentType string) string {
	return contentType + "|" + wixID
}

func (r *memIdentityMap) Lookup(ctx context.Context, wixID, contentType string) (int64, bool, error) {
	id, ok := r.m[mapKey(wixID, contentType)]
	return id, ok, nil
}

func (r *memIdentityMap) Save(ctx context.Context, wixID string, localID int64, contentType string) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.m[mapKey(wixID, contentType)] = localID
	return nil
}

func (r *memIdentityMap) LookupByLocalID(ctx context.Context, localID int64, contentType string) (string, bool, error) {
	for key, id := range r.m {
		if id == localID && strings.HasPrefix(key, contentType+"|") {
			return strings.TrimPrefix(key, contentType+"|"), true, nil
		}
	}
	return "", false, nil
}

func (r *memIdentityMap) CountByType(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for key := range r.m {
		contentType, _, _ := strings.Cut(key, "|")
		counts[contentType]++
	}
	return counts, nil
}

type memTermRepo struct {
	seq       int64
	terms     map[int64]*secondary.TermRecord
	createErr error
}

func newMemTermRepo() *memTermRepo {
	return &memTermRepo{terms: make(map[int64]*secondary.TermRecord)}
}

func (r *memTermRepo) Create(ctx context.Context, term *secondary.TermRecord) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.seq++
	stored := *term
	stored.ID = r.seq
	r.terms[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memTermRepo) Update(ctx context.Context, term *secondary.TermRecord) error {
	if _, ok := r.terms[term.ID]; !ok {
		return fmt.Errorf("term %d not found", term.ID)
	}
	stored := *term
	r.terms[term.ID] = &stored
	return nil
}

func (r *memTermRepo) GetByID(ctx context.Context, id int64) (*secondary.TermRecord, error) {
	term, ok := r.terms[id]
	if !ok {
		return nil, fmt.Errorf("term %d not found", id)
	}
	return term, nil
}

func (r *memTermRepo) List(ctx context.Context, taxonomy string) ([]*secondary.TermRecord, error) {
	var out []*secondary.TermRecord
	for _, term := range r.terms {
		if term.Taxonomy == taxonomy {
			out = append(out, term)
		}
	}
	return out, nil
}

type memPostRepo struct {
	seq         int64
	posts       map[int64]*secondary.PostRecord
	termsByPost map[int64]map[string][]int64
	featured    map[int64]int64

	createErr       error
	updateErr       error
	replaceTermsErr error
	createCalls     int
	updateCalls     int
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{
		posts:       make(map[int64]*secondary.PostRecord),
		termsByPost: make(map[int64]map[string][]int64),
		featured:    make(map[int64]int64),
	}
}

func (r *memPostRepo) Create(ctx context.Context, post *secondary.PostRecord) (int64, error) {
	r.createCalls++
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.seq++
	stored := *post
	stored.ID = r.seq
	r.posts[stored.ID] = &stored
	return stored.ID, nil
}

func (r *memPostRepo) Update(ctx context.Context, post *secondary.PostRecord) error {
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("post %d not found", post.ID)
	}
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id int64) (*secondary.PostRecord, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d not found", id)
	}
	return post, nil
}

func (r *memPostRepo) FindByTitle(ctx context.Context, title string) (*secondary.PostRecord, error) {
	for _, post := range r.posts {
		if post.Title == title {
			return post, nil
		}
	}
	return nil, nil
}

func (r *memPostRepo) ReplaceTerms(ctx context.Context, postID int64, taxonomy string, termIDs []int64) error {
	if r.replaceTermsErr != nil {
		return r.replaceTermsErr
	}
	if r.termsByPost[postID] == nil {
		r.termsByPost[postID] = make(map[string][]int64)
	}
	r.termsByPost[postID][taxonomy] = termIDs
	return nil
}

func (r *memPostRepo) SetFeaturedAsset(ctx context.Context, postID, assetID int64) error {
	r.featured[postID] = assetID
	return nil
}

func (r *memPostRepo) Count(ctx context.Context) (int, error) {
	return len(r.posts), nil
}

type recordingLog struct {
	creates  []string
	degraded []string
}

func (l *recordingLog) LogCreate(ctx context.Context, entityType, entityID string) error {
	l.creates = append(l.creates, entityType+":"+entityID)
	return nil
}

func (l *recordingLog) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return nil
}

func (l *recordingLog) LogDegraded(ctx context.Context, entityType, entityID, step, detail string) error {
	l.degraded = append(l.degraded, entityID+"/"+step)
	return nil
}

type stubAssets struct {
	asset *richtext.ImportedAsset
	err   error
	urls  []string
}

func (s *stubAssets) ImportImage(ctx context.Context, sourceURL string) (*richtext.ImportedAsset, error) {
	s.urls = append(s.urls, sourceURL)
	if s.err != nil {
		return nil, s.err
	}
	if s.asset != nil {
		return s.asset, nil
	}
	return &richtext.ImportedAsset{ID: 1, URL: "/uploads/imported.jpg"}, nil
}

// --- fixture ---

type fixture struct {
	svc    *MigrationServiceImpl
	client *mockBlogClient
	idMap  *memIdentityMap
	terms  *memTermRepo
	posts  *memPostRepo
	logw   *recordingLog
	assets *stubAssets
	sleeps int
}

func newFixture() *fixture {
	f := &fixture{
		client: &mockBlogClient{},
		idMap:  newMemIdentityMap(),
		terms:  newMemTermRepo(),
		posts:  newMemPostRepo(),
		logw:   &recordingLog{},
		assets: &stubAssets{},
	}
	f.svc = NewMigrationService(f.client, f.idMap, f.terms, f.posts, f.logw,
		richtext.NewTranspiler(f.assets), f.assets, "client-abc")
	f.svc.sleep = func(time.Duration) { f.sleeps++ }
	return f
}

func paragraph(text string) *models.RichContent {
	return &models.RichContent{Nodes: []models.Node{{
		Type: models.NodeParagraph,
		Nodes: []models.Node{{
			Type:     models.NodeText,
			TextData: &models.TextData{Text: text},
		}},
	}}}
}

func goodPost(id, title string) models.WixPost {
	return models.WixPost{
		ID:                 id,
		Title:              title,
		RichContent:        paragraph("Body of " + title),
		FirstPublishedDate: "2024-01-02T03:04:05Z",
	}
}

func postPage(hasNext bool, posts ...models.WixPost) *secondary.PostPage {
	return &secondary.PostPage{
		Posts:          posts,
		PagingMetadata: &secondary.PagingMetadata{HasNext: hasNext},
	}
}

// --- categories ---

func TestMigrateCategoriesFirstRunCreates(t *testing.T) {
	f := newFixture()
	f.client.categories = []*secondary.CategoryPage{{
		Categories: []models.WixCategory{
			{ID: "cat-1", Label: "News", Slug: "news", Description: "latest news"},
		},
		PagingMetadata: &secondary.PagingMetadata{HasNext: false},
	}}

	res, err := f.svc.MigrateCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, f.client.authCalls)

	id, found, _ := f.idMap.Lookup(context.Background(), "cat-1", models.ContentTypeCategory)
	require.True(t, found)
	term := f.terms.terms[id]
	require.NotNil(t, term)
	assert.Equal(t, "News", term.Name)
	assert.Equal(t, "news", term.Slug)
	assert.Equal(t, secondary.TaxonomyCategory, term.Taxonomy)
	assert.Contains(t, f.logw.creates, "category:cat-1")
}

func TestMigrateCategoriesSecondRunUpdatesSameTerm(t *testing.T) {
	f := newFixture()
	page := &secondary.CategoryPage{
		Categories:     []models.WixCategory{{ID: "cat-1", Label: "News"}},
		PagingMetadata: &secondary.PagingMetadata{HasNext: false},
	}
	f.client.categories = []*secondary.CategoryPage{page, page}

	first, err := f.svc.MigrateCategories(context.Background())
	require.NoError(t, err)
	second, err := f.svc.MigrateCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, second.Updated)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, f.terms.terms, 1)
}

func TestMigrateCategoriesPagesUntilHasNextFalse(t *testing.T) {
	f := newFixture()
	f.client.categories = []*secondary.CategoryPage{
		{
			Categories:     []models.WixCategory{{ID: "cat-1", Label: "One"}},
			PagingMetadata: &secondary.PagingMetadata{HasNext: true},
		},
		{
			Categories:     []models.WixCategory{{ID: "cat-2", Label: "Two"}},
			PagingMetadata: &secondary.PagingMetadata{HasNext: false},
		},
	}

	res, err := f.svc.MigrateCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, res.BatchesProcessed)
	assert.Equal(t, 2, f.client.catIdx)
}

func TestMigrateCategoriesSkipsMissingLabel(t *testing.T) {
	f := newFixture()
	f.client.categories = []*secondary.CategoryPage{{
		Categories: []models.WixCategory{
			{ID: "cat-1", Label: ""},
			{ID: "", Label: "Orphan"},
		},
	}}

	res, err := f.svc.MigrateCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 0, res.Created)
}

func TestMigrateCategoriesAuthFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.client.authErr = errors.New("invalid client id")

	res, err := f.svc.MigrateCategories(context.Background())

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, f.client.calls)
}

func TestMigrateCategoriesFetchFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.client.catErr = errors.New("connection refused")

	_, err := f.svc.MigrateCategories(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch categories")
}

// --- tags ---

func TestMigrateTagsPagesByReportedTotal(t *testing.T) {
	f := newFixture()
	f.client.tags = []*secondary.TagPage{
		{
			Tags:     []models.WixTag{{ID: "tag-1", Label: "go"}, {ID: "tag-2", Label: "sql"}},
			MetaData: &secondary.QueryMetaData{Total: 150},
		},
		{
			Tags:     []models.WixTag{{ID: "tag-3", Label: "http"}},
			MetaData: &secondary.QueryMetaData{Total: 150},
		},
	}

	res, err := f.svc.MigrateTags(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 2, f.client.tagIdx)
	for _, term := range f.terms.terms {
		assert.Equal(t, secondary.TaxonomyPostTag, term.Taxonomy)
	}
}

func TestMigrateTagsStopsOnEmptyPage(t *testing.T) {
	f := newFixture()

	res, err := f.svc.MigrateTags(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, []string{"tags"}, f.client.calls)
}

// --- posts ---

func TestMigratePostsCreatesPostWithMappings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.idMap.Save(ctx, "cat-1", 7, models.ContentTypeCategory))
	require.NoError(t, f.idMap.Save(ctx, "tag-1", 9, models.ContentTypeTag))

	post := goodPost("post-12345678abc", "My First Post")
	post.Excerpt = "  An excerpt  "
	post.Slug = "my-first-post-wix"
	post.Hashtags = []string{"a", "b"}
	post.CategoryIDs = []string{"cat-1", "cat-unmapped"}
	post.TagIDs = []string{"tag-1"}
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	res, err := f.svc.MigratePosts(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.TotalProcessed)
	assert.Empty(t, res.Errors)

	record := f.posts.posts[1]
	require.NotNil(t, record)
	assert.Equal(t, "My First Post", record.Title)
	assert.Equal(t, "<p>Body of My First Post</p>\n", record.Content)
	assert.Equal(t, "An excerpt", record.Excerpt)
	assert.Equal(t, "my-first-post-post-123", record.Slug)
	assert.Equal(t, secondary.PostStatusPublish, record.Status)
	assert.Equal(t, "post-12345678abc", record.WixID)
	assert.Equal(t, "my-first-post-wix", record.WixSlug)
	assert.Equal(t, "a,b", record.Hashtags)

	// Only mapped terms are assigned.
	assert.Equal(t, []int64{7}, f.posts.termsByPost[1][secondary.TaxonomyCategory])
	assert.Equal(t, []int64{9}, f.posts.termsByPost[1][secondary.TaxonomyPostTag])

	localID, found, _ := f.idMap.Lookup(ctx, "post-12345678abc", models.ContentTypePost)
	require.True(t, found)
	assert.Equal(t, int64(1), localID)
}

func TestMigratePostsNeverPublishedBecomesDraft(t *testing.T) {
	f := newFixture()
	post := goodPost("post-1", "Unfinished Draft")
	post.FirstPublishedDate = ""
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	_, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, secondary.PostStatusDraft, f.posts.posts[1].Status)
}

func TestMigratePostsUpdatesMappedPost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.posts.posts[55] = &secondary.PostRecord{ID: 55, Title: "Old Title", Content: "old"}
	f.posts.seq = 55
	require.NoError(t, f.idMap.Save(ctx, "post-1", 55, models.ContentTypePost))

	f.client.postFetches = []postFetch{{page: postPage(false, goodPost("post-1", "New Title"))}}

	res, err := f.svc.MigratePosts(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, f.posts.createCalls)
	assert.Equal(t, "New Title", f.posts.posts[55].Title)
}

func TestMigratePostsDuplicateTitleBackfillsMapping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.posts.posts[3] = &secondary.PostRecord{ID: 3, Title: "Same Title"}
	f.posts.seq = 3

	f.client.postFetches = []postFetch{{page: postPage(false, goodPost("wix-9", "Same Title"))}}

	res, err := f.svc.MigratePosts(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, f.posts.createCalls)

	localID, found, _ := f.idMap.Lookup(ctx, "wix-9", models.ContentTypePost)
	require.True(t, found)
	assert.Equal(t, int64(3), localID)
}

func TestMigratePostsEmptyContentFailsWithoutRetry(t *testing.T) {
	f := newFixture()
	post := models.WixPost{ID: "post-1", Title: "Hollow Post"}
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	require.Len(t, res.FailedItems, 1)
	assert.False(t, res.FailedItems[0].RetryPossible)
	assert.Contains(t, res.FailedItems[0].Error, "no content available")
}

func TestMigratePostsExcerptFallback(t *testing.T) {
	f := newFixture()
	post := models.WixPost{ID: "post-1", Title: "Excerpt Only", Excerpt: "just the excerpt"}
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, "just the excerpt", f.posts.posts[1].Content)
}

func TestMigratePostsSkipsMissingTitle(t *testing.T) {
	f := newFixture()
	post := models.WixPost{ID: "post-1", Title: ""}
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.FailedItems, 1)
	assert.Equal(t, "post-1", res.FailedItems[0].WixID)
	assert.Equal(t, "No title", res.FailedItems[0].Title)
	assert.False(t, res.FailedItems[0].RetryPossible)
}

func TestMigratePostsHaltsAfterConsecutiveFailures(t *testing.T) {
	f := newFixture()
	var posts []models.WixPost
	for i := 0; i < 7; i++ {
		// No content and no excerpt, so every item fails.
		posts = append(posts, models.WixPost{ID: fmt.Sprintf("post-%d", i), Title: fmt.Sprintf("Broken %d", i)})
	}
	f.client.postFetches = []postFetch{{page: postPage(false, posts...)}}

	res, err := f.svc.MigratePosts(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunHalted))
	require.NotNil(t, res)
	assert.Len(t, res.FailedItems, 5)
	assert.Equal(t, 5, res.TotalProcessed)
	assert.Contains(t, res.Errors[len(res.Errors)-1], "critical")
}

func TestMigratePostsFailureCounterResetsOnSuccess(t *testing.T) {
	f := newFixture()
	var posts []models.WixPost
	for i := 0; i < 4; i++ {
		posts = append(posts, models.WixPost{ID: fmt.Sprintf("bad-a-%d", i), Title: fmt.Sprintf("Bad A %d", i)})
	}
	posts = append(posts, goodPost("good-1", "Good Post"))
	for i := 0; i < 4; i++ {
		posts = append(posts, models.WixPost{ID: fmt.Sprintf("bad-b-%d", i), Title: fmt.Sprintf("Bad B %d", i)})
	}
	f.client.postFetches = []postFetch{{page: postPage(false, posts...)}}

	res, err := f.svc.MigratePosts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Len(t, res.FailedItems, 8)
}

func TestMigratePostsStopsAfterThreeEmptyPages(t *testing.T) {
	f := newFixture()

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalProcessed)
	assert.Equal(t, []int{0, 100, 200}, f.client.postOffsets)
}

func TestMigratePostsStopsWhenHasNextFalse(t *testing.T) {
	f := newFixture()
	f.client.postFetches = []postFetch{
		{page: postPage(false, goodPost("post-1", "One"), goodPost("post-2", "Two"))},
	}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []int{0}, f.client.postOffsets)
}

func TestMigratePostsWithoutMetadataUsesBatchSize(t *testing.T) {
	f := newFixture()
	f.client.postFetches = []postFetch{
		{page: &secondary.PostPage{Posts: []models.WixPost{goodPost("post-1", "Only One")}}},
	}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	// One post is fewer than a full page, so the loop stops.
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []int{0}, f.client.postOffsets)
}

func TestMigratePostsHonorsOffsetCeiling(t *testing.T) {
	f := newFixture()
	f.client.postPageFn = func(offset, limit int) (*secondary.PostPage, error) {
		post := models.WixPost{
			ID:      fmt.Sprintf("post-%d", offset),
			Title:   fmt.Sprintf("Post at %d", offset),
			Excerpt: "short",
		}
		return postPage(true, post), nil
	}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.client.postOffsets, 101)
	assert.Equal(t, 10000, f.client.postOffsets[len(f.client.postOffsets)-1])
	assert.Contains(t, res.Errors[len(res.Errors)-1], "safety limit")
}

func TestMigratePostsThrottlesEveryTenth(t *testing.T) {
	f := newFixture()
	var posts []models.WixPost
	for i := 0; i < 12; i++ {
		posts = append(posts, goodPost(fmt.Sprintf("post-%d", i), fmt.Sprintf("Post %d", i)))
	}
	f.client.postFetches = []postFetch{{page: postPage(false, posts...)}}

	_, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.sleeps)
}

func TestMigratePostsTruncatesLongContent(t *testing.T) {
	f := newFixture()
	post := models.WixPost{
		ID:      "post-1",
		Title:   "Very Long Post",
		Excerpt: strings.Repeat("x", 60000),
	}
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	_, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	content := f.posts.posts[1].Content
	assert.Len(t, content, maxContentLength+len(truncationSuffix))
	assert.True(t, strings.HasSuffix(content, truncationSuffix))
}

func TestMigratePostsFetchErrorEndsRunWithPartialResult(t *testing.T) {
	f := newFixture()
	f.client.postFetches = []postFetch{
		{page: postPage(true, goodPost("post-1", "First"))},
		{err: errors.New("gateway timeout")},
	}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Contains(t, res.Errors[len(res.Errors)-1], "failed to fetch posts at offset 100")
}

// --- featured image and terms ---

func TestMigratePostsImportsCoverImage(t *testing.T) {
	f := newFixture()
	f.assets.asset = &richtext.ImportedAsset{ID: 42, URL: "/uploads/cover.jpg"}
	post := goodPost("post-1", "With Cover")
	post.CoverMedia = []byte(`{"url":"https://img.example.com/cover.jpg"}`)
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	_, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://img.example.com/cover.jpg"}, f.assets.urls)
	assert.Equal(t, int64(42), f.posts.featured[1])
}

func TestMigratePostsCoverImportFailureDegrades(t *testing.T) {
	f := newFixture()
	f.assets.err = errors.New("download failed")
	post := goodPost("post-1", "With Broken Cover")
	post.CoverMedia = []byte(`{"url":"https://img.example.com/cover.jpg"}`)
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	res, err := f.svc.MigratePosts(context.Background())
	require.NoError(t, err)

	// The post itself still succeeds.
	assert.Equal(t, 1, res.Created)
	assert.Contains(t, f.logw.degraded, "post-1/featured_image")
}

func TestMigratePostsTermAssignmentFailureDegrades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.idMap.Save(ctx, "cat-1", 7, models.ContentTypeCategory))
	f.posts.replaceTermsErr = errors.New("constraint violation")

	post := goodPost("post-1", "With Terms")
	post.CategoryIDs = []string{"cat-1"}
	f.client.postFetches = []postFetch{{page: postPage(false, post)}}

	res, err := f.svc.MigratePosts(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Contains(t, f.logw.degraded, "post-1/term_assignment")
}

// --- batch ---

func TestMigratePostsBatchReportsPaging(t *testing.T) {
	f := newFixture()
	var posts []models.WixPost
	for i := 0; i < 47; i++ {
		posts = append(posts, goodPost(fmt.Sprintf("post-%d", i), fmt.Sprintf("Post %d", i)))
	}
	f.client.postFetches = []postFetch{{page: postPage(false, posts...)}}

	res, err := f.svc.MigratePostsBatch(context.Background(), primary.BatchRequest{Offset: 0, Limit: 100})
	require.NoError(t, err)

	assert.Equal(t, 47, res.ProcessedInBatch)
	assert.Equal(t, 47, res.Created)
	assert.False(t, res.HasMore)
	assert.Equal(t, 100, res.NextOffset)
}

func TestMigratePostsBatchFullPageHasMore(t *testing.T) {
	f := newFixture()
	var posts []models.WixPost
	for i := 0; i < 5; i++ {
		posts = append(posts, goodPost(fmt.Sprintf("post-%d", i), fmt.Sprintf("Post %d", i)))
	}
	f.client.postFetches = []postFetch{{page: postPage(true, posts...)}}

	res, err := f.svc.MigratePostsBatch(context.Background(), primary.BatchRequest{Offset: 40, Limit: 5})
	require.NoError(t, err)

	assert.True(t, res.HasMore)
	assert.Equal(t, 45, res.NextOffset)
	assert.Equal(t, []int{40}, f.client.postOffsets)
}

func TestMigratePostsBatchDefaultsPaging(t *testing.T) {
	f := newFixture()

	res, err := f.svc.MigratePostsBatch(context.Background(), primary.BatchRequest{Offset: -5, Limit: 0})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Offset)
	assert.Equal(t, 100, res.Limit)
	assert.Equal(t, 100, res.NextOffset)
	assert.False(t, res.HasMore)
}

func TestMigratePostsBatchFetchErrorIsFatal(t *testing.T) {
	f := newFixture()
	f.client.postFetches = []postFetch{{err: errors.New("boom")}}

	_, err := f.svc.MigratePostsBatch(context.Background(), primary.BatchRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch posts")
}

// --- retry ---

func TestRetryFailedPostRejectsBadPayload(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RetryFailedPost(context.Background(), nil)
	require.Error(t, err)

	_, err = f.svc.RetryFailedPost(context.Background(), &models.WixPost{ID: "post-1"})
	require.Error(t, err)
}

func TestRetryFailedPostMigratesOnce(t *testing.T) {
	f := newFixture()
	payload := goodPost("post-1", "Recovered Post")

	res, err := f.svc.RetryFailedPost(context.Background(), &payload)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, models.ActionCreated, res.Action)
	assert.Equal(t, int64(1), res.LocalID)
	assert.Equal(t, "post-1", res.WixID)

	// A second retry updates the already-created post.
	res, err = f.svc.RetryFailedPost(context.Background(), &payload)
	require.NoError(t, err)
	assert.Equal(t, models.ActionUpdated, res.Action)
}

func TestRetryFailedPostPropagatesProcessingError(t *testing.T) {
	f := newFixture()
	payload := models.WixPost{ID: "post-1", Title: "Still Hollow"}

	_, err := f.svc.RetryFailedPost(context.Background(), &payload)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry failed for post post-1")
}

// --- failure report ---

func TestDescribeFailuresEmpty(t *testing.T) {
	f := newFixture()
	assert.Equal(t, "No failed posts to report.", f.svc.DescribeFailures(nil))
}

func TestDescribeFailuresFormatsReport(t *testing.T) {
	f := newFixture()
	longTitle := strings.Repeat("t", 80)
	out := f.svc.DescribeFailures([]models.FailedItem{
		{WixID: "wix-1", Title: "First", Error: "network error", RetryPossible: true},
		{WixID: "wix-2", Title: longTitle, Error: "no content", RetryPossible: false},
	})

	assert.Contains(t, out, "FAILED POSTS SUMMARY (2 posts failed):")
	assert.Contains(t, out, "1. [RETRY POSSIBLE]")
	assert.Contains(t, out, "2. [NO RETRY - DATA ISSUE]")
	assert.Contains(t, out, "Wix ID: wix-1")
	assert.Contains(t, out, longTitle[:reportTitleLimit])
	assert.NotContains(t, out, longTitle)
	assert.Contains(t, out, "MANUAL MIGRATION INSTRUCTIONS:")
}

// --- full run ---

func TestMigrateAllRunsCollectionsInOrder(t *testing.T) {
	f := newFixture()
	f.client.categories = []*secondary.CategoryPage{{
		Categories: []models.WixCategory{{ID: "cat-1", Label: "News"}},
	}}
	f.client.tags = []*secondary.TagPage{{
		Tags:     []models.WixTag{{ID: "tag-1", Label: "go"}},
		MetaData: &secondary.QueryMetaData{Total: 1},
	}}
	f.client.postFetches = []postFetch{{page: postPage(false, goodPost("post-1", "Hello"))}}

	full, err := f.svc.MigrateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.client.authCalls)
	require.True(t, len(f.client.calls) >= 3)
	assert.Equal(t, "categories", f.client.calls[0])
	assert.Equal(t, 1, full.Categories.Created)
	assert.Equal(t, 1, full.Tags.Created)
	assert.Equal(t, 1, full.Posts.Created)
	assert.Empty(t, full.Errors)

	// Post terms resolve because categories migrated first.
	lastCall := f.client.calls[len(f.client.calls)-1]
	assert.Equal(t, "posts", lastCall)
}

func TestMigrateAllRecordsCollectionErrors(t *testing.T) {
	f := newFixture()
	f.client.catErr = errors.New("categories endpoint down")
	f.client.postFetches = []postFetch{{page: postPage(false, goodPost("post-1", "Hello"))}}

	full, err := f.svc.MigrateAll(context.Background())
	require.NoError(t, err)

	require.Len(t, full.Errors, 1)
	assert.Contains(t, full.Errors[0], "categories:")
	assert.Nil(t, full.Categories)
	assert.NotNil(t, full.Tags)
	assert.Equal(t, 1, full.Posts.Created)
}

// --- helpers ---

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"already-slugged", "already-slugged"},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.in), "slugify(%q)", tc.in)
	}
}

func TestPostSlug(t *testing.T) {
	assert.Equal(t, "my-post-abcd1234", postSlug("My Post", "abcd1234efgh"))
	assert.Equal(t, "abcd1234", postSlug("!!!", "abcd1234efgh"))
	assert.Equal(t, "short-id", postSlug("Short", "id"))
}
