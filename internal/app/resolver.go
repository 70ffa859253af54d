package app

import (
	"strings"

	"agency_site/internal/domain"
)

/********** field precedence table (single source of truth) **********/

// Each tracked contact field declares how to read it from a Location and from
// the Tenant. Precedence is evaluated per field: location wins when it has a
// non-blank value, otherwise the tenant's value, otherwise "".
type fieldRule struct {
	name       string
	fromLoc    func(*domain.Location) string
	fromTenant func(domain.Tenant) string
	assign     func(*domain.ResolvedView, string)
}

var contactFields = []fieldRule{
	{"name",
		func(l *domain.Location) string { return l.Name },
		func(t domain.Tenant) string { return t.Name },
		func(v *domain.ResolvedView, s string) { v.Name = s }},
	{"phone",
		func(l *domain.Location) string { return l.Phone },
		func(t domain.Tenant) string { return t.Phone },
		func(v *domain.ResolvedView, s string) { v.Phone = s }},
	{"address",
		func(l *domain.Location) string { return joinNonEmpty(l.Address, l.Address2) },
		func(t domain.Tenant) string { return t.Address },
		func(v *domain.ResolvedView, s string) { v.Address = s }},
	{"city",
		func(l *domain.Location) string { return l.City },
		func(t domain.Tenant) string { return t.City },
		func(v *domain.ResolvedView, s string) { v.City = s }},
	{"state",
		func(l *domain.Location) string { return l.State },
		func(t domain.Tenant) string { return t.State },
		func(v *domain.ResolvedView, s string) { v.State = s }},
	{"zip",
		func(l *domain.Location) string { return l.Zip },
		func(t domain.Tenant) string { return t.Zip },
		func(v *domain.ResolvedView, s string) { v.Zip = s }},
}

// Resolve merges an optional Location over its Tenant into one fully-populated
// view. Pure and total: never fails, never returns a value absent from both
// inputs, and whitespace-only values count as absent.
func Resolve(t domain.Tenant, loc *domain.Location) domain.ResolvedView {
	var v domain.ResolvedView
	v.SiteURL = t.SiteURL
	if loc != nil {
		v.LocationSlug = loc.Slug
	}
	for _, f := range contactFields {
		val := ""
		if loc != nil {
			val = strings.TrimSpace(f.fromLoc(loc))
		}
		if val == "" {
			val = strings.TrimSpace(f.fromTenant(t))
		}
		f.assign(&v, val)
	}
	return v
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}
