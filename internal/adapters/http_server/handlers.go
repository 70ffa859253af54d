// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"agency_site/internal/adapters/observability"
	"agency_site/internal/app"
	"agency_site/internal/domain"
)

type Handlers struct {
	Q   *app.QueryService
	Inv *app.InvalidationService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type revalidateResponse struct {
	Invalidated bool     `json:"invalidated"`
	Paths       []string `json:"paths"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/locations", h.listLocations)
	s.mux.Get("/v1/locations/{slug}", h.getLocation)
	s.mux.Get("/v1/pages/policies/{slug}", h.policyPage)
	s.mux.Get("/v1/pages/blog/{slug}", h.blogPage)
	s.mux.Post("/api/revalidate", h.revalidate)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// bearerToken extracts the credential from the Authorization header. Returns
// "" when the header is absent or not a bearer scheme.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (h *Handlers) listLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Q.Locations(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "listing locations failed")
		return
	}
	writeCachedJSON(w, r, locs)
}

func (h *Handlers) getLocation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	view, err := h.Q.ResolvedView(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "location not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "resolving location failed")
		return
	}
	writeCachedJSON(w, r, view)
}

func (h *Handlers) policyPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	locationSlug := r.URL.Query().Get("location")
	pv, err := h.Q.PolicyPage(r.Context(), slug, locationSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "policy page not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "building policy page failed")
		return
	}
	writeCachedJSON(w, r, pv)
}

func (h *Handlers) blogPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	topic := r.URL.Query().Get("topic")
	pv, err := h.Q.BlogPage(r.Context(), slug, topic)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "blog post not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "building blog page failed")
		return
	}
	writeCachedJSON(w, r, pv)
}

// revalidate is the authenticated invalidation webhook. Parameter validation
// happens first, but the credential gate runs before any path computation.
func (h *Handlers) revalidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contentType := q.Get("type")
	slug := q.Get("slug")
	if contentType == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "type is required")
		return
	}
	if slug == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "slug is required")
		return
	}

	res, err := h.Inv.Invalidate(r.Context(), app.InvalidateRequest{
		ContentType:  contentType,
		Slug:         slug,
		Topic:        q.Get("topic"),
		LocationSlug: q.Get("location"),
		Token:        bearerToken(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			observability.ObserveInvalidation(contentType, "unauthorized", 0)
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or malformed Authorization header")
		case errors.Is(err, domain.ErrAuthFailed):
			observability.ObserveInvalidation(contentType, "auth_failed", 0)
			writeProblem(w, http.StatusUnauthorized, "Authentication Failed", err.Error())
		case errors.Is(err, domain.ErrInvalid):
			observability.ObserveInvalidation(contentType, "invalid", 0)
			writeProblem(w, http.StatusBadRequest, "Invalid Parameter", err.Error())
		default:
			observability.ObserveInvalidation(contentType, "error", 0)
			writeProblem(w, http.StatusInternalServerError, "Invalidation Failed", err.Error())
		}
		return
	}

	observability.ObserveInvalidation(contentType, "ok", len(res.Paths))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(revalidateResponse{Invalidated: true, Paths: res.Paths}); err != nil {
		log.Error().Err(err).Msg("failed to write revalidate response")
	}
}
