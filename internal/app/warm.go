package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"agency_site/internal/domain"
)

// WarmTarget names one page to render into the cache.
type WarmTarget struct {
	ContentType  string
	Slug         string
	LocationSlug string // policies only; empty for tenant-wide
}

// WarmService re-primes the page cache after a deploy or bulk content load by
// rendering pages through the query service (which stores them under their
// page: keys).
type WarmService struct {
	repo domain.ContentRepository
	q    *QueryService
}

func NewWarmService(r domain.ContentRepository, q *QueryService) *WarmService {
	return &WarmService{repo: r, q: q}
}

// Targets enumerates every page worth warming: each policy per scope
// (tenant-wide plus every location) and each blog post.
func (s *WarmService) Targets(ctx context.Context) ([]WarmTarget, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	var out []WarmTarget

	// Tenant-wide policies.
	tenantWide, err := s.repo.PublishedSlugs(ctx, domain.TypePolicy, nil)
	if err != nil {
		return nil, err
	}
	for slug := range tenantWide {
		out = append(out, WarmTarget{ContentType: domain.TypePolicy, Slug: slug})
	}

	// Location-scoped policies.
	for i := range locations {
		loc := locations[i]
		slugs, err := s.repo.PublishedSlugs(ctx, domain.TypePolicy, &loc.ID)
		if err != nil {
			return nil, err
		}
		for slug := range slugs {
			out = append(out, WarmTarget{ContentType: domain.TypePolicy, Slug: slug, LocationSlug: loc.Slug})
		}
	}

	// Blog posts are tenant-wide.
	blogs, err := s.repo.PublishedSlugs(ctx, domain.TypeBlog, nil)
	if err != nil {
		return nil, err
	}
	for slug := range blogs {
		out = append(out, WarmTarget{ContentType: domain.TypeBlog, Slug: slug})
	}

	return out, nil
}

// WarmOne renders a single target. Missing content is logged and skipped, not
// fatal: the publication set and the content table can briefly disagree.
func (s *WarmService) WarmOne(ctx context.Context, t WarmTarget) error {
	var err error
	switch t.ContentType {
	case domain.TypePolicy:
		_, err = s.q.PolicyPage(ctx, t.Slug, t.LocationSlug)
	case domain.TypeBlog:
		// Topic lives on the item, not in the published set.
		var item domain.ContentItem
		item, err = s.repo.GetContent(ctx, domain.TypeBlog, t.Slug)
		if err == nil {
			topic := ""
			if item.Topic != nil {
				topic = *item.Topic
			}
			_, err = s.q.BlogPage(ctx, t.Slug, topic)
		}
	default:
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("type", t.ContentType).Str("slug", t.Slug).Msg("published slug has no content row; skipping")
		return nil
	}
	return err
}
