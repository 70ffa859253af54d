package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"agency_site/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *Repo) GetTenant(ctx context.Context) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx, getTenantSQL)

	var t domain.Tenant
	var phone, address, city, state, zip, siteURL sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &phone, &address, &city, &state, &zip, &siteURL, &t.MultiLocation); err != nil {
		if err == sql.ErrNoRows {
			return domain.Tenant{}, domain.ErrNotFound
		}
		return domain.Tenant{}, err
	}
	t.Phone = phone.String
	t.Address = address.String
	t.City = city.String
	t.State = state.String
	t.Zip = zip.String
	t.SiteURL = siteURL.String
	return t, nil
}

func (r *Repo) GetLocationBySlug(ctx context.Context, slug string) (*domain.Location, error) {
	row := r.db.QueryRowContext(ctx, getLocationBySlugSQL, slug)
	loc, err := scanLocation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return loc, nil
}

func (r *Repo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.QueryContext(ctx, listLocationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanLocation(s scanner) (*domain.Location, error) {
	var loc domain.Location
	var phone, address, address2, city, state, zip sql.NullString
	var lat, lon sql.NullFloat64
	if err := s.Scan(&loc.ID, &loc.TenantID, &loc.Slug, &loc.Name,
		&phone, &address, &address2, &city, &state, &zip, &lat, &lon); err != nil {
		return nil, err
	}
	loc.Phone = phone.String
	loc.Address = address.String
	loc.Address2 = address2.String
	loc.City = city.String
	loc.State = state.String
	loc.Zip = zip.String
	if lat.Valid && lon.Valid {
		la, lo := lat.Float64, lon.Float64
		loc.Lat, loc.Lon = &la, &lo
	}
	return &loc, nil
}

func (r *Repo) PublishedSlugs(ctx context.Context, contentType string, locationID *int64) (map[string]struct{}, error) {
	var rows *sql.Rows
	var err error
	if locationID == nil {
		rows, err = r.db.QueryContext(ctx, publishedSlugsTenantSQL, contentType)
	} else {
		rows, err = r.db.QueryContext(ctx, publishedSlugsLocationSQL, contentType, *locationID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out[s] = struct{}{}
	}
	return out, rows.Err()
}

func (r *Repo) GetContent(ctx context.Context, contentType, slug string) (domain.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, getContentSQL, contentType, slug)

	var item domain.ContentItem
	var locationID sql.NullInt64
	var topic, body sql.NullString
	var relatedJSON []byte
	if err := row.Scan(&item.ID, &item.TenantID, &locationID, &item.Type, &item.Slug,
		&item.Title, &topic, &body, &item.Published, &relatedJSON,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.ContentItem{}, domain.ErrNotFound
		}
		return domain.ContentItem{}, err
	}
	if locationID.Valid {
		id := locationID.Int64
		item.LocationID = &id
	}
	if topic.Valid {
		tp := topic.String
		item.Topic = &tp
	}
	item.Body = body.String
	if len(relatedJSON) > 0 {
		_ = json.Unmarshal(relatedJSON, &item.RelatedSlugs)
	}
	return item, nil
}

func (r *Repo) UpsertContent(ctx context.Context, item domain.ContentItem) error {
	related, _ := json.Marshal(item.RelatedSlugs)
	_, err := r.db.ExecContext(ctx, upsertContentSQL,
		item.TenantID,
		valInt64(item.LocationID),
		item.Type,
		item.Slug,
		item.Title,
		valStr(item.Topic),
		item.Body,
		item.Published,
		string(related),
	)
	return err
}
