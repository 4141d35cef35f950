// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"cruise_catalog/internal/domain"
)

// Catalog is the read side the handlers serve; *app.QueryService implements it.
type Catalog interface {
	Search(ctx context.Context, q domain.SailingSearch) (domain.SailingsPage, error)
	Facets(ctx context.Context, f domain.SailingFilter) (domain.Facets, error)
	Detail(ctx context.Context, id string) (domain.SailingDetail, error)
	Alternates(ctx context.Context, sailingID string) ([]domain.AlternateSailing, error)
	ShipImages(ctx context.Context, shipID string, page, pageSize int) (domain.ShipImagesPage, error)
	ShipDecks(ctx context.Context, shipID string) ([]domain.ShipDeck, error)
	CabinImages(ctx context.Context, cabinTypeID string) ([]domain.CabinImage, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Q  Catalog
	DB Pinger
}

type problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

type list[T any] struct {
	Items []T `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/sailings", h.searchSailings)
		r.Get("/filters", h.facets)
		r.Get("/sailings/{id}", h.getSailing)
		r.Get("/sailings/{id}/alternates", h.listAlternates)
		r.Get("/ships/{shipId}/images", h.listShipImages)
		r.Get("/ships/{shipId}/decks", h.listShipDecks)
		r.Get("/cabin-types/{id}/images", h.listCabinImages)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors: validation -> 400, not found -> 404, rest -> 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{
			Type:   "about:blank",
			Title:  "Invalid query parameters",
			Status: http.StatusBadRequest,
			Errors: ve.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// pathID returns the canonical id, or writes 404 for anything that is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (string, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, domain.NewNotFound(resource, raw))
		return "", false
	}
	return id.String(), true
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

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeTagged writes v with a weak ETag and answers a matching If-None-Match with 304.
func writeTagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if etag == "" {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write tagged body")
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health: database ping failed")
			writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) searchSailings(w http.ResponseWriter, r *http.Request) {
	q, err := parseSailingSearch(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out)
}

func (h *Handlers) facets(w http.ResponseWriter, r *http.Request) {
	q, err := parseSailingSearch(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.Facets(r.Context(), q.Filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, out)
}

func (h *Handlers) getSailing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "sailing")
	if !ok {
		return
	}
	out, err := h.Q.Detail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, out)
}

func (h *Handlers) listAlternates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "sailing")
	if !ok {
		return
	}
	out, err := h.Q.Alternates(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list[domain.AlternateSailing]{Items: out})
}

func (h *Handlers) listShipImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "shipId", "ship")
	if !ok {
		return
	}
	page, size, err := parsePage(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.ShipImages(r.Context(), id, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, out)
}

func (h *Handlers) listShipDecks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "shipId", "ship")
	if !ok {
		return
	}
	out, err := h.Q.ShipDecks(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, list[domain.ShipDeck]{Items: out})
}

func (h *Handlers) listCabinImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "cabin_type")
	if !ok {
		return
	}
	out, err := h.Q.CabinImages(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, list[domain.CabinImage]{Items: out})
}
