package domain

// Tenant is the single agency that owns a deployment. Loaded once per request
// scope and never mutated at runtime.
type Tenant struct {
	ID            int64
	Name          string
	Phone         string
	Address       string
	City          string
	State         string
	Zip           string
	SiteURL       string
	MultiLocation bool // tenant-wide flag; single-location deployments have zero Location rows
}

// Location is a physical/service location under a Tenant. Optional: a
// single-location deployment has none and every field comes from Tenant.
type Location struct {
	ID       int64
	TenantID int64
	Slug     string // URL-unique per tenant
	Name     string
	Phone    string
	Address  string
	Address2 string
	City     string
	State    string
	Zip      string
	Lat, Lon *float64
}

// ResolvedView is the merge of one Location (or none) over its Tenant for the
// contact field set. Fields are plain strings, possibly empty, never nil.
type ResolvedView struct {
	Name    string
	Phone   string
	Address string
	City    string
	State   string
	Zip     string

	LocationSlug string // empty when the view is tenant-wide
	SiteURL      string
}
