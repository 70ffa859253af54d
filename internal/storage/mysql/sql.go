package mysql

const getTenantSQL = `
SELECT id, name, phone, address, city, state, zip, site_url, multi_location
FROM tenants
ORDER BY id
LIMIT 1
`

const getLocationBySlugSQL = `
SELECT id, tenant_id, slug, name, phone, address, address2, city, state, zip, lat, lon
FROM locations
WHERE slug = ?
`

const listLocationsSQL = `
SELECT id, tenant_id, slug, name, phone, address, address2, city, state, zip, lat, lon
FROM locations
ORDER BY name, id
`

// Tenant-wide content is always part of the published set; a location filter
// widens it with that location's own items.
const publishedSlugsTenantSQL = `
SELECT slug FROM content_items
WHERE type = ? AND published = 1 AND location_id IS NULL
`

const publishedSlugsLocationSQL = `
SELECT slug FROM content_items
WHERE type = ? AND published = 1 AND (location_id IS NULL OR location_id = ?)
`

const getContentSQL = `
SELECT id, tenant_id, location_id, type, slug, title, topic, body, published, related, created_at, updated_at
FROM content_items
WHERE type = ? AND slug = ?
`

// Unique key on (type, slug); authoring systems re-send full records.
const upsertContentSQL = `
INSERT INTO content_items
  (tenant_id, location_id, type, slug, title, topic, body, published, related)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  tenant_id   = VALUES(tenant_id),
  location_id = VALUES(location_id),
  title       = VALUES(title),
  topic       = VALUES(topic),
  body        = VALUES(body),
  published   = VALUES(published),
  related     = VALUES(related),
  updated_at  = CURRENT_TIMESTAMP
`
