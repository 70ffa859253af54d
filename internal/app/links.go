package app

import "strings"

// locationRoot is the canonical path segment under which every
// location-scoped page lives.
const locationRoot = "/locations/"

// LocationContext carries the active location scope through a render subtree.
// Immutable once constructed; a new context replaces the old one when scope
// changes. The zero value is the tenant-wide (unscoped) context.
type LocationContext struct {
	prefix string // "/locations/<slug>", or "" when tenant-wide
}

// NewLocationContext scopes a subtree to one location by slug.
func NewLocationContext(slug string) LocationContext {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return LocationContext{}
	}
	return LocationContext{prefix: locationRoot + slug}
}

// TenantContext is the unscoped context for single-location deployments and
// tenant-wide subtrees.
func TenantContext() LocationContext { return LocationContext{} }

func (c LocationContext) Scoped() bool   { return c.prefix != "" }
func (c LocationContext) Prefix() string { return c.prefix }

// Rewrite scopes an internal href to the active location:
//   - unscoped context: href unchanged
//   - href already under /locations/: unchanged, never double-prefixed
//   - "/": the location's home is the scoped root
//   - anything else: prefix + href with exactly one "/" at the join
func (c LocationContext) Rewrite(href string) string {
	if c.prefix == "" {
		return href
	}
	if strings.HasPrefix(href, locationRoot) {
		return href
	}
	if href == "" || href == "/" {
		return c.prefix
	}
	return c.prefix + "/" + strings.TrimPrefix(href, "/")
}
