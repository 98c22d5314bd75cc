package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chirender "github.com/go-chi/render"
	"listing_studio/models"
	"listing_studio/render"
	"listing_studio/services"
)

type handler struct {
	pipeline      *services.Pipeline
	checker       *services.HealthcheckService
	webhookSecret string
}

type extractRequest struct {
	URL         string `json:"url"`
	ListingType string `json:"listing_type"`
}

type dispatchRequest struct {
	RecordID    string                 `json:"record_id"`
	Record      *models.PropertyRecord `json:"record,omitempty"`
	TemplateID  string                 `json:"template_id"`
	ListingType string                 `json:"listing_type"`
	Wait        bool                   `json:"wait"`
}

type dispatchResponse struct {
	Job    models.RenderJobHandle `json:"job"`
	Result *models.RenderJob      `json:"result,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		chirender.JSON(w, r, map[string]any{"status": "ok"})
		return
	}
	report := h.checker.Check(r.Context())
	if report.Status != "ok" {
		chirender.Status(r, http.StatusServiceUnavailable)
	}
	chirender.JSON(w, r, report)
}

func (h *handler) extract(w http.ResponseWriter, r *http.Request) {
	var body extractRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, r, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		badRequest(w, r, "url_required", "")
		return
	}

	profile, err := h.pipeline.ProfileForSession(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := h.pipeline.Extract(r.Context(), body.URL, body.ListingType, profile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	chirender.JSON(w, r, rec)
}

// dispatch submits a render for a stored or inline record. With wait set the
// request blocks until the render settles.
func (h *handler) dispatch(w http.ResponseWriter, r *http.Request) {
	var body dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, r, "invalid_json", err.Error())
		return
	}

	var rec models.PropertyRecord
	switch {
	case body.Record != nil:
		rec = *body.Record
	case body.RecordID != "":
		stored, err := h.pipeline.Record(r.Context(), body.RecordID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rec = *stored
	default:
		badRequest(w, r, "record_required", "send record_id or record")
		return
	}

	profile, err := h.pipeline.ProfileForSession(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	handle, err := h.pipeline.Dispatch(r.Context(), rec, body.TemplateID, profile, body.ListingType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !body.Wait {
		chirender.Status(r, http.StatusAccepted)
		chirender.JSON(w, r, dispatchResponse{Job: handle})
		return
	}

	job, err := h.pipeline.Await(r.Context(), handle)
	if err != nil {
		status, code := statusFor(err)
		chirender.Status(r, status)
		chirender.JSON(w, r, map[string]any{"error": code, "detail": err.Error(), "job": handle, "result": job})
		return
	}
	chirender.JSON(w, r, dispatchResponse{Job: handle, Result: job})
}

func (h *handler) job(w http.ResponseWriter, r *http.Request) {
	job, err := h.pipeline.Job(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	chirender.JSON(w, r, job)
}

// bannerbearEvent is the image or collection object Bannerbear posts when a
// render settles.
type bannerbearEvent struct {
	render.CollectionStatus
	ImageURL string `json:"image_url"`
}

func (h *handler) bannerbearWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret != "" {
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
			chirender.Status(r, http.StatusUnauthorized)
			chirender.JSON(w, r, errorResponse{Error: "unauthorized"})
			return
		}
	}

	var ev bannerbearEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		badRequest(w, r, "invalid_json", err.Error())
		return
	}
	if ev.UID == "" {
		badRequest(w, r, "uid_required", "")
		return
	}

	job, err := h.pipeline.JobByRemote(r.Context(), ev.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch ev.Status {
	case "completed":
		result := &models.AssetResult{Kind: job.Kind, ImageURL: ev.ImageURL}
		if job.Kind == models.RenderCollection {
			result = render.CollectionResult(ev.CollectionStatus)
		}
		job = h.pipeline.Finish(r.Context(), job, result, "")
	case "failed":
		job = h.pipeline.Finish(r.Context(), job, nil, string(job.Kind)+" render failed")
	default:
		chirender.Status(r, http.StatusAccepted)
	}
	chirender.JSON(w, r, job)
}

// sessionToken reads the caller's session from a bearer token or the
// X-Session-Token header.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}
