package domain

import "time"

// Content types understood by the invalidation webhook and the content store.
const (
	TypePolicy   = "policy"
	TypeBlog     = "blog"
	TypeGlossary = "glossary"
)

// ContentItem is a publishable unit (policy page, blog post, glossary term).
// Authored out-of-band; this service only reads it and reacts to change events.
type ContentItem struct {
	ID         int64
	TenantID   int64
	LocationID *int64 // nil for tenant-wide content
	Type       string // policy|blog|glossary
	Slug       string
	Title      string
	Topic      *string // blog only
	Body       string
	Published  bool
	// RelatedSlugs are stored cross-references; they may lag behind the live
	// slug (publish can append a location discriminator) and must be
	// validated before rendering.
	RelatedSlugs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PageView is the read model served to page renderers: the content item plus
// the location-resolved contact block and validated, scope-rewritten links.
type PageView struct {
	Slug         string
	Title        string
	Topic        *string
	Body         string
	Path         string // canonical cached path for this page
	Contact      ResolvedView
	RelatedLinks []string // validated hrefs, already location-scoped
}
