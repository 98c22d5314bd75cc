package api

import (
	"errors"
	"log"
	"net/http"

	chirender "github.com/go-chi/render"
	"listing_studio/render"
	"listing_studio/scraper"
	"listing_studio/storage"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	var (
		verr *scraper.ValidationError
		eerr *scraper.ExtractionError
		rerr *render.RenderError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "invalid_url"
	case errors.As(err, &eerr):
		return http.StatusBadGateway, "extraction_failed"
	case errors.As(err, &rerr):
		return http.StatusBadGateway, "render_failed"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("API: %s %s: %v", r.Method, r.URL.Path, err)
	}
	chirender.Status(r, status)
	chirender.JSON(w, r, errorResponse{Error: code, Detail: err.Error()})
}

func badRequest(w http.ResponseWriter, r *http.Request, code, detail string) {
	chirender.Status(r, http.StatusBadRequest)
	chirender.JSON(w, r, errorResponse{Error: code, Detail: detail})
}
