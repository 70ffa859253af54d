package app_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"agency_site/internal/app"
	"agency_site/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	tenant    domain.Tenant
	locations map[string]domain.Location
	content   map[string]domain.ContentItem  // keyed type+":"+slug
	published map[string]map[string]struct{} // keyed type
	pubErr    error
}

func (f *fakeRepo) GetTenant(ctx context.Context) (domain.Tenant, error) {
	return f.tenant, nil
}

func (f *fakeRepo) GetLocationBySlug(ctx context.Context, slug string) (*domain.Location, error) {
	if loc, ok := f.locations[slug]; ok {
		cp := loc
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var out []domain.Location
	for _, loc := range f.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (f *fakeRepo) PublishedSlugs(ctx context.Context, contentType string, locationID *int64) (map[string]struct{}, error) {
	if f.pubErr != nil {
		return nil, f.pubErr
	}
	out := make(map[string]struct{})
	for s := range f.published[contentType] {
		out[s] = struct{}{}
	}
	return out, nil
}

func (f *fakeRepo) GetContent(ctx context.Context, contentType, slug string) (domain.ContentItem, error) {
	if item, ok := f.content[contentType+":"+slug]; ok {
		return item, nil
	}
	return domain.ContentItem{}, domain.ErrNotFound
}

func (f *fakeRepo) UpsertContent(ctx context.Context, item domain.ContentItem) error {
	if f.content == nil {
		f.content = map[string]domain.ContentItem{}
	}
	f.content[item.Type+":"+item.Slug] = item
	return nil
}

type fakeCache struct {
	store  map[string]any
	dels   []string
	delErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.ResolvedView:
		*d = v.(domain.ResolvedView)
	case *domain.PageView:
		*d = v.(domain.PageView)
	case *[]domain.Location:
		*d = v.([]domain.Location)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.store, key)
	return nil
}

func newFakeRepo() *fakeRepo {
	locID := int64(7)
	return &fakeRepo{
		tenant: domain.Tenant{
			ID: 1, Name: "Brightway Insurance", Phone: "800-555-0100",
			Address: "100 Main St", City: "Atlanta", State: "GA", Zip: "30301",
			SiteURL: "https://example.com", MultiLocation: true,
		},
		locations: map[string]domain.Location{
			"woodstock-ga": {ID: locID, TenantID: 1, Slug: "woodstock-ga", Name: "Woodstock Office", Phone: "770-555-0101", City: "Woodstock", State: "GA"},
		},
		content: map[string]domain.ContentItem{
			"policy:umbrella-insurance": {
				ID: 10, TenantID: 1, Type: domain.TypePolicy, Slug: "umbrella-insurance",
				Title: "Umbrella Insurance", Body: "body", Published: true,
				RelatedSlugs: []string{"flood-insurance", "auto-insurance"},
			},
			"blog:best-auto-tips": {
				ID: 11, TenantID: 1, Type: domain.TypeBlog, Slug: "best-auto-tips",
				Title: "Best Auto Tips", Topic: ptr("auto"), Body: "body", Published: true,
			},
		},
		published: map[string]map[string]struct{}{
			domain.TypePolicy: {
				"umbrella-insurance":           {},
				"auto-insurance":               {},
				"flood-insurance-woodstock-ga": {},
			},
			domain.TypeBlog: {"best-auto-tips": {}},
		},
	}
}

func ptr[T any](v T) *T { return &v }

// ---- tests ----

func TestResolvedView_CacheMissThenHit(t *testing.T) {
	repo := newFakeRepo()
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	v, err := q.ResolvedView(context.Background(), "woodstock-ga")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if v.Phone != "770-555-0101" || v.Address != "100 Main St" {
		t.Fatalf("unexpected view: %+v", v)
	}

	// Mutate repo to ensure second read indeed comes from cache
	loc := repo.locations["woodstock-ga"]
	loc.Phone = "SHOULD NOT SEE THIS"
	repo.locations["woodstock-ga"] = loc

	v2, err := q.ResolvedView(context.Background(), "woodstock-ga")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if v2.Phone != "770-555-0101" {
		t.Fatalf("expected cached phone, got %q", v2.Phone)
	}
}

func TestResolvedView_UnknownLocation(t *testing.T) {
	q := app.NewQueryService(newFakeRepo(), &fakeCache{}, time.Minute)
	if _, err := q.ResolvedView(context.Background(), "nowhere"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPolicyPage_ScopedLinksAndCacheKey(t *testing.T) {
	repo := newFakeRepo()
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	pv, err := q.PolicyPage(context.Background(), "umbrella-insurance", "woodstock-ga")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if pv.Path != "/locations/woodstock-ga/policies/umbrella-insurance" {
		t.Fatalf("unexpected path: %q", pv.Path)
	}
	// flood-insurance matches its suffixed published slug; auto-insurance is
	// exact; both come back scoped to the location.
	want := []string{
		"/locations/woodstock-ga/policies/flood-insurance-woodstock-ga",
		"/locations/woodstock-ga/policies/auto-insurance",
	}
	if !reflect.DeepEqual(pv.RelatedLinks, want) {
		t.Fatalf("related links: got %v, want %v", pv.RelatedLinks, want)
	}
	// Cached under the key the invalidation service would evict.
	if _, ok := cache.store[app.PageKey(pv.Path)]; !ok {
		t.Fatalf("page not cached under its page key; cache: %v", cache.store)
	}
}

func TestPolicyPage_PublishedFetchFailureDropsLinks(t *testing.T) {
	repo := newFakeRepo()
	repo.pubErr = domain.ErrUpstream
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	pv, err := q.PolicyPage(context.Background(), "umbrella-insurance", "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(pv.RelatedLinks) != 0 {
		t.Fatalf("expected no links on published-set failure, got %v", pv.RelatedLinks)
	}
}

func TestBlogPage_TopicSelectsNestedPath(t *testing.T) {
	q := app.NewQueryService(newFakeRepo(), &fakeCache{}, time.Minute)

	pv, err := q.BlogPage(context.Background(), "best-auto-tips", "auto")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if pv.Path != "/blog/auto/best-auto-tips" {
		t.Fatalf("unexpected path: %q", pv.Path)
	}

	flat, err := q.BlogPage(context.Background(), "best-auto-tips", "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if flat.Path != "/blog/best-auto-tips" {
		t.Fatalf("unexpected flat path: %q", flat.Path)
	}
}
