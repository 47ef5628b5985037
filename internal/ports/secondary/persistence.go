// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// IdentityMapRepository defines the secondary port for the persistent
// identity map translating Wix ids to destination-local ids.
type IdentityMapRepository interface {
	// Lookup returns the local id mapped to (wixID, contentType), or
	// found=false when no mapping exists.
	Lookup(ctx context.Context, wixID, contentType string) (localID int64, found bool, err error)

	// Save upserts the mapping keyed by (wixID, contentType). Each
	// save is atomic and independent; no transaction spans saves.
	Save(ctx context.Context, wixID string, localID int64, contentType string) error

	// LookupByLocalID returns the wix id mapped to a local id.
	LookupByLocalID(ctx context.Context, localID int64, contentType string) (wixID string, found bool, err error)

	// CountByType returns mapping counts keyed by content type.
	CountByType(ctx context.Context) (map[string]int, error)
}

// TermRepository defines the secondary port for term (category/tag) persistence.
type TermRepository interface {
	// Create persists a new term and returns its local id.
	Create(ctx context.Context, term *TermRecord) (int64, error)

	// Update updates an existing term.
	Update(ctx context.Context, term *TermRecord) error

	// GetByID retrieves a term by its local id.
	GetByID(ctx context.Context, id int64) (*TermRecord, error)

	// List retrieves all terms of one taxonomy ordered by name.
	List(ctx context.Context, taxonomy string) ([]*TermRecord, error)
}

// TermRecord represents a term as stored in persistence.
type TermRecord struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	Taxonomy    string // "category" or "post_tag"
	CreatedAt   string
	UpdatedAt   string
}

// Taxonomy constants for TermRecord.
const (
	TaxonomyCategory = "category"
	TaxonomyPostTag  = "post_tag"
)

// PostRepository defines the secondary port for post persistence.
type PostRepository interface {
	// Create persists a new post and returns its local id.
	Create(ctx context.Context, post *PostRecord) (int64, error)

	// Update updates an existing post.
	Update(ctx context.Context, post *PostRecord) error

	// GetByID retrieves a post by its local id.
	GetByID(ctx context.Context, id int64) (*PostRecord, error)

	// FindByTitle returns the first post with an identical title, or
	// nil when none exists. Used by the duplicate-create guard.
	FindByTitle(ctx context.Context, title string) (*PostRecord, error)

	// ReplaceTerms replaces a post's term associations for one
	// taxonomy with the given term ids.
	ReplaceTerms(ctx context.Context, postID int64, taxonomy string, termIDs []int64) error

	// SetFeaturedAsset attaches an imported asset as the post's
	// featured image.
	SetFeaturedAsset(ctx context.Context, postID, assetID int64) error

	// Count returns the number of stored posts.
	Count(ctx context.Context) (int, error)
}

// PostRecord represents a post as stored in persistence. Status is
// "publish" when the source carried a first-published date, "draft"
// otherwise.
type PostRecord struct {
	ID              int64
	Title           string
	Content         string
	Excerpt         string
	Slug            string
	Status          string
	PublishedAt     string
	ModifiedAt      string
	FeaturedAssetID int64 // 0 when unset
	WixID           string
	WixSlug         string
	Featured        bool
	Pinned          bool
	MinutesToRead   int
	Hashtags        string // comma-joined
	CreatedAt       string
	UpdatedAt       string
}

// Post status constants
const (
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
)

// AssetRepository defines the secondary port for imported media persistence.
type AssetRepository interface {
	// Create persists a new asset record and returns its local id.
	Create(ctx context.Context, asset *AssetRecord) (int64, error)

	// GetByID retrieves an asset by its local id.
	GetByID(ctx context.Context, id int64) (*AssetRecord, error)

	// FindBySourceURL returns the asset previously imported from the
	// given source URL, or nil when none exists. This is the dedupe
	// lookup that makes imports idempotent.
	FindBySourceURL(ctx context.Context, sourceURL string) (*AssetRecord, error)
}

// AssetRecord represents an imported media file as stored in persistence.
// Variants holds a JSON list of generated size-variant filenames.
type AssetRecord struct {
	ID        int64
	Filename  string
	Path      string
	MimeType  string
	SourceURL string
	Width     int
	Height    int
	Variants  string
	CreatedAt string
}
