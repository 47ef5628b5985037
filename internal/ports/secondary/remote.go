package secondary

import (
	"context"

	"github.com/example/wixport/internal/models"
)

// BlogClient defines the secondary port for the remote Wix content API.
//
// Pagination metadata is provider-inconsistent: categories and posts
// carry PagingMetadata with an explicit HasNext flag, tags carry only
// MetaData with a reported total. The orchestrator preserves both
// continuation strategies rather than unifying them.
type BlogClient interface {
	// Authenticate obtains and caches an access token for the given
	// application client id. Subsequent fetches reuse the token until
	// its declared expiry.
	Authenticate(ctx context.Context, clientID string) error

	// FetchCategories fetches one page of blog categories.
	FetchCategories(ctx context.Context, offset, limit int) (*CategoryPage, error)

	// FetchTags fetches one page of blog tags.
	FetchTags(ctx context.Context, offset, limit int) (*TagPage, error)

	// FetchPosts fetches one page of blog posts with rich content
	// included, sorted by first-published-date descending.
	FetchPosts(ctx context.Context, offset, limit int) (*PostPage, error)
}

// PagingMetadata is the cursor block returned by v3 collection endpoints.
type PagingMetadata struct {
	Count   int  `json:"count,omitempty"`
	Offset  int  `json:"offset,omitempty"`
	Total   int  `json:"total,omitempty"`
	HasNext bool `json:"hasNext,omitempty"`
}

// QueryMetaData is the cursor block returned by v2 query endpoints.
type QueryMetaData struct {
	Count  int `json:"count,omitempty"`
	Offset int `json:"offset,omitempty"`
	Total  int `json:"total,omitempty"`
}

// CategoryPage is one page of categories.
type CategoryPage struct {
	Categories     []models.WixCategory `json:"categories"`
	PagingMetadata *PagingMetadata      `json:"pagingMetadata,omitempty"`
}

// TagPage is one page of tags.
type TagPage struct {
	Tags     []models.WixTag `json:"tags"`
	MetaData *QueryMetaData  `json:"metaData,omitempty"`
}

// PostPage is one page of posts.
type PostPage struct {
	Posts          []models.WixPost `json:"posts"`
	PagingMetadata *PagingMetadata  `json:"pagingMetadata,omitempty"`
}
