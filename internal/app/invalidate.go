package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"agency_site/internal/domain"
)

// PageKey maps a site path to its cache key. The read path stores page
// payloads under the same keys the invalidation path evicts.
func PageKey(path string) string { return "page:" + path }

type InvalidateRequest struct {
	ContentType  string
	Slug         string
	Topic        string // blog only, optional
	LocationSlug string // optional
	Token        string // raw bearer credential, "" when the header was absent
}

type InvalidateResult struct {
	Paths     []string
	Principal domain.Principal
}

type InvalidationService struct {
	verifier domain.TokenVerifier
	cache    domain.Cache
}

func NewInvalidationService(v domain.TokenVerifier, c domain.Cache) *InvalidationService {
	return &InvalidationService{verifier: v, cache: c}
}

// Invalidate authenticates the caller, computes the closed set of cached paths
// affected by a content change, and evicts each one. Idempotent: evicting an
// already-cold path is a no-op, and a second identical call returns the same
// path set.
func (s *InvalidationService) Invalidate(ctx context.Context, req InvalidateRequest) (InvalidateResult, error) {
	// Fail fast: no credential means no path computation and no side effects.
	if req.Token == "" {
		return InvalidateResult{}, domain.ErrUnauthorized
	}

	principal, err := s.verifier.Verify(ctx, req.Token)
	if err != nil {
		// Upstream detail stays attached for diagnostics; the raw token never
		// leaves the request.
		return InvalidateResult{}, err
	}

	paths, err := PathsFor(req.ContentType, req.Slug, req.Topic, req.LocationSlug)
	if err != nil {
		return InvalidateResult{}, err
	}

	for _, p := range paths {
		if err := s.cache.Del(ctx, PageKey(p)); err != nil {
			return InvalidateResult{}, fmt.Errorf("%w: evicting %s: %v", domain.ErrUpstream, p, err)
		}
	}

	log.Info().
		Str("subject", principal.Subject).
		Str("type", req.ContentType).
		Str("slug", req.Slug).
		Strs("paths", paths).
		Msg("cache invalidated")

	return InvalidateResult{Paths: paths, Principal: principal}, nil
}

// PathsFor deterministically computes every cached path a content change
// touches. The response lists all targeted paths, cached or not, so callers
// can verify completeness.
func PathsFor(contentType, slug, topic, locationSlug string) ([]string, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", domain.ErrInvalid)
	}
	switch contentType {
	case domain.TypePolicy:
		if locationSlug != "" {
			base := locationRoot + locationSlug
			// Policy edits surface on homepage summaries, hence the root.
			return []string{base + "/policies/" + slug, base + "/policies", "/"}, nil
		}
		return []string{"/policies/" + slug, "/policies", "/"}, nil

	case domain.TypeBlog:
		if topic != "" {
			// The flat detail path is kept for the pre-topic URL scheme;
			// evict it unconditionally regardless of what is cached.
			return []string{
				"/blog/" + topic + "/" + slug,
				"/blog/" + topic,
				"/blog/" + slug,
				"/blog",
			}, nil
		}
		return []string{"/blog/" + slug, "/blog"}, nil

	case domain.TypeGlossary:
		return []string{"/glossary/" + slug, "/glossary"}, nil

	default:
		return nil, fmt.Errorf("%w: unknown content type %q", domain.ErrInvalid, contentType)
	}
}
