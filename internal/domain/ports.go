package domain

import "context"

// ContentRepository is the record fetcher over the shared content store.
type ContentRepository interface {
	GetTenant(ctx context.Context) (Tenant, error)
	GetLocationBySlug(ctx context.Context, slug string) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)

	// PublishedSlugs returns the live publication set for one content type,
	// scoped to a location when locationID is non-nil (tenant-wide content is
	// always included in the set).
	PublishedSlugs(ctx context.Context, contentType string, locationID *int64) (map[string]struct{}, error)

	GetContent(ctx context.Context, contentType, slug string) (ContentItem, error)

	// UpsertContent exists for seeding and operator tooling; the request read
	// path never calls it.
	UpsertContent(ctx context.Context, item ContentItem) error
}

// Cache is the page/record cache. Del on a cold key is a no-op.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenVerifier exchanges a bearer token for a principal with the identity
// provider. Implementations must never log or echo the raw token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// Principal is the authenticated caller of the invalidation webhook.
type Principal struct {
	Subject string
	Email   string
}
