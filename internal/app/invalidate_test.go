package app_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"agency_site/internal/app"
	"agency_site/internal/domain"
)

type fakeVerifier struct {
	principal domain.Principal
	err       error
	calls     int
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (domain.Principal, error) {
	f.calls++
	if f.err != nil {
		return domain.Principal{}, f.err
	}
	return f.principal, nil
}

func okVerifier() *fakeVerifier {
	return &fakeVerifier{principal: domain.Principal{Subject: "ops-bot", Email: "ops@example.com"}}
}

func TestInvalidate_MissingCredentialFailsFast(t *testing.T) {
	verifier := okVerifier()
	cache := &fakeCache{}
	svc := app.NewInvalidationService(verifier, cache)

	_, err := svc.Invalidate(context.Background(), app.InvalidateRequest{
		ContentType: domain.TypePolicy, Slug: "umbrella-insurance", Token: "",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	// No verification, no path computation, no side effects.
	if verifier.calls != 0 {
		t.Fatalf("verifier called %d times before credential check", verifier.calls)
	}
	if len(cache.dels) != 0 {
		t.Fatalf("evictions happened without a credential: %v", cache.dels)
	}
}

func TestInvalidate_RejectedCredentialNoEviction(t *testing.T) {
	verifier := &fakeVerifier{err: fmt.Errorf("%w: token expired", domain.ErrAuthFailed)}
	cache := &fakeCache{}
	svc := app.NewInvalidationService(verifier, cache)

	_, err := svc.Invalidate(context.Background(), app.InvalidateRequest{
		ContentType: domain.TypePolicy, Slug: "umbrella-insurance", Token: "bad-token",
	})
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if len(cache.dels) != 0 {
		t.Fatalf("evictions happened with a rejected credential: %v", cache.dels)
	}
}

func TestInvalidate_PolicyWithLocation(t *testing.T) {
	cache := &fakeCache{}
	svc := app.NewInvalidationService(okVerifier(), cache)

	res, err := svc.Invalidate(context.Background(), app.InvalidateRequest{
		ContentType:  domain.TypePolicy,
		Slug:         "umbrella-insurance",
		LocationSlug: "woodstock-ga",
		Token:        "tok",
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []string{
		"/locations/woodstock-ga/policies/umbrella-insurance",
		"/locations/woodstock-ga/policies",
		"/",
	}
	if !reflect.DeepEqual(res.Paths, want) {
		t.Fatalf("paths: got %v, want %v", res.Paths, want)
	}
	// Every targeted path was evicted under its page key.
	var wantDels []string
	for _, p := range want {
		wantDels = append(wantDels, app.PageKey(p))
	}
	if !reflect.DeepEqual(cache.dels, wantDels) {
		t.Fatalf("dels: got %v, want %v", cache.dels, wantDels)
	}
	if res.Principal.Subject != "ops-bot" {
		t.Fatalf("principal not propagated: %+v", res.Principal)
	}
}

func TestInvalidate_BlogWithTopicTargetsAllFour(t *testing.T) {
	cache := &fakeCache{}
	svc := app.NewInvalidationService(okVerifier(), cache)

	res, err := svc.Invalidate(context.Background(), app.InvalidateRequest{
		ContentType: domain.TypeBlog, Slug: "best-auto-tips", Topic: "auto", Token: "tok",
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := append([]string(nil), res.Paths...)
	sort.Strings(got)
	want := []string{"/blog", "/blog/auto", "/blog/auto/best-auto-tips", "/blog/best-auto-tips"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("paths: got %v, want %v", got, want)
	}
}

func TestInvalidate_Idempotent(t *testing.T) {
	cache := &fakeCache{}
	svc := app.NewInvalidationService(okVerifier(), cache)
	req := app.InvalidateRequest{ContentType: domain.TypePolicy, Slug: "auto-insurance", Token: "tok"}

	first, err := svc.Invalidate(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	// Second call hits only cold keys and must behave identically.
	second, err := svc.Invalidate(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !reflect.DeepEqual(first.Paths, second.Paths) {
		t.Fatalf("path sets differ: %v vs %v", first.Paths, second.Paths)
	}
}

func TestInvalidate_UnknownTypeRejected(t *testing.T) {
	cache := &fakeCache{}
	svc := app.NewInvalidationService(okVerifier(), cache)

	_, err := svc.Invalidate(context.Background(), app.InvalidateRequest{
		ContentType: "newsletter", Slug: "x", Token: "tok",
	})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(cache.dels) != 0 {
		t.Fatalf("evictions for unknown type: %v", cache.dels)
	}
}

func TestInvalidate_EvictionFailureSurfaces(t *testing.T) {
	cache := &fakeCache{delErr: errors.New("redis down")}
	svc := app.NewInvalidationService(okVerifier(), cache)

	_, err := svc.Invalidate(context.Background(), app.InvalidateRequest{
		ContentType: domain.TypePolicy, Slug: "auto-insurance", Token: "tok",
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestPathsFor_Variants(t *testing.T) {
	cases := []struct {
		name                        string
		ctype, slug, topic, locSlug string
		want                        []string
	}{
		{"policy tenant-wide", domain.TypePolicy, "umbrella-insurance", "", "",
			[]string{"/policies/umbrella-insurance", "/policies", "/"}},
		{"blog no topic", domain.TypeBlog, "best-auto-tips", "", "",
			[]string{"/blog/best-auto-tips", "/blog"}},
		{"glossary", domain.TypeGlossary, "deductible", "", "",
			[]string{"/glossary/deductible", "/glossary"}},
	}
	for _, tc := range cases {
		got, err := app.PathsFor(tc.ctype, tc.slug, tc.topic, tc.locSlug)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := app.PathsFor(domain.TypePolicy, "", "", ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("missing slug must be rejected, got %v", err)
	}
}
