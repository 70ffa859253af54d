package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"agency_site/internal/domain"
)

type QueryService struct {
	repo     domain.ContentRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ContentRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// ResolvedView merges the tenant with the named location (or nothing, for
// tenant-wide pages). Unknown location slugs surface ErrNotFound.
func (s *QueryService) ResolvedView(ctx context.Context, locationSlug string) (domain.ResolvedView, error) {
	key := fmt.Sprintf("view:%s", locationSlug)
	var v domain.ResolvedView
	if ok, _ := s.cache.Get(ctx, key, &v); ok {
		return v, nil
	}

	t, err := s.repo.GetTenant(ctx)
	if err != nil {
		return domain.ResolvedView{}, err
	}
	var loc *domain.Location
	if locationSlug != "" {
		loc, err = s.repo.GetLocationBySlug(ctx, locationSlug)
		if err != nil {
			return domain.ResolvedView{}, err
		}
	}

	v = Resolve(t, loc)
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	return v, nil
}

// Locations lists every location for nav/footer rendering.
func (s *QueryService) Locations(ctx context.Context) ([]domain.Location, error) {
	const key = "locations:all"
	var out []domain.Location
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// PolicyPage assembles the payload for one policy page, location-scoped when
// locationSlug is set. Cached under the same page: key the invalidation
// service evicts.
func (s *QueryService) PolicyPage(ctx context.Context, slug, locationSlug string) (domain.PageView, error) {
	lctx := TenantContext()
	if locationSlug != "" {
		lctx = NewLocationContext(locationSlug)
	}
	path := lctx.Rewrite("/policies/" + slug)
	key := PageKey(path)

	var pv domain.PageView
	if ok, _ := s.cache.Get(ctx, key, &pv); ok {
		return pv, nil
	}

	item, err := s.repo.GetContent(ctx, domain.TypePolicy, slug)
	if err != nil {
		return domain.PageView{}, err
	}
	contact, err := s.ResolvedView(ctx, locationSlug)
	if err != nil {
		return domain.PageView{}, err
	}

	pv = domain.PageView{
		Slug:         item.Slug,
		Title:        item.Title,
		Body:         item.Body,
		Path:         path,
		Contact:      contact,
		RelatedLinks: s.relatedLinks(ctx, domain.TypePolicy, "/policies/", item, lctx),
	}
	s.cachePage(ctx, key, pv)
	return pv, nil
}

// BlogPage assembles a blog post payload; topic selects the nested URL scheme.
func (s *QueryService) BlogPage(ctx context.Context, slug, topic string) (domain.PageView, error) {
	path := "/blog/" + slug
	if topic != "" {
		path = "/blog/" + topic + "/" + slug
	}
	key := PageKey(path)

	var pv domain.PageView
	if ok, _ := s.cache.Get(ctx, key, &pv); ok {
		return pv, nil
	}

	item, err := s.repo.GetContent(ctx, domain.TypeBlog, slug)
	if err != nil {
		return domain.PageView{}, err
	}
	contact, err := s.ResolvedView(ctx, "")
	if err != nil {
		return domain.PageView{}, err
	}

	pv = domain.PageView{
		Slug:         item.Slug,
		Title:        item.Title,
		Topic:        item.Topic,
		Body:         item.Body,
		Path:         path,
		Contact:      contact,
		RelatedLinks: s.relatedLinks(ctx, domain.TypeBlog, "/blog/", item, TenantContext()),
	}
	s.cachePage(ctx, key, pv)
	return pv, nil
}

// relatedLinks validates stored cross-references against the live published
// set and rewrites the survivors into location-scoped hrefs. Fails closed: a
// fetch failure yields no links rather than possibly-dead ones.
func (s *QueryService) relatedLinks(ctx context.Context, contentType, base string, item domain.ContentItem, lctx LocationContext) []string {
	if len(item.RelatedSlugs) == 0 {
		return nil
	}
	published, err := s.repo.PublishedSlugs(ctx, contentType, item.LocationID)
	if err != nil {
		log.Warn().Err(err).Str("slug", item.Slug).Msg("published-set fetch failed; dropping related links")
		return []string{}
	}
	live := ValidateRelated(item.RelatedSlugs, published)
	out := make([]string, 0, len(live))
	for _, p := range live {
		out = append(out, lctx.Rewrite(base+p))
	}
	return out
}

// cachePage stores a copy so later callers cannot mutate the cached slice.
func (s *QueryService) cachePage(ctx context.Context, key string, pv domain.PageView) {
	cp := pv
	if n := len(pv.RelatedLinks); n > 0 {
		cp.RelatedLinks = make([]string, n)
		copy(cp.RelatedLinks, pv.RelatedLinks)
	}
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
}
