// internal/api/activities/handler.go
package activities

import (
	"context"
	"net/http"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	pathParamActivity = "activity_name"
	queryParamEmail   = "email"
	indexPage         = "/static/index.html"
)

// Service is the enrollment surface exposed over HTTP.
type Service interface {
	List(ctx context.Context) map[string]models.ActivitySnapshot
	Enroll(ctx context.Context, activity, email string) (enrollment.Result, error)
	Unenroll(ctx context.Context, activity, email string) (enrollment.Result, error)
}

type Handler struct {
	config  *Config
	service Service
	errors  *apperrors.ResponseWriter
	logger  logger.Logger
}

func NewHandler(config *Config, service Service, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"component": "http"})
	return &Handler{
		config:  config,
		service: service,
		errors:  apperrors.NewResponseWriter(log),
		logger:  log,
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{activity_name}/signup", h.signup)
	mux.HandleFunc("DELETE /activities/{activity_name}/unregister", h.unregister)

	mux.HandleFunc("GET /{$}", h.index)
	if h.config.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.config.StaticDir))))
	}

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /ready", h.ready)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Routes returns a mux with every route registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, ActivitiesResponse(h.service.List(r.Context())))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.service.Enroll)
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.service.Unenroll)
}

func (h *Handler) change(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, activity, email string) (enrollment.Result, error),
) {
	activity := r.PathValue(pathParamActivity)

	email := r.URL.Query().Get(queryParamEmail)
	if email == "" {
		h.errors.Write(w, r, apperrors.NewInvalidParticipantError("missing email query parameter"))
		return
	}

	res, err := apply(r.Context(), activity, email)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, MessageResponse{Message: res.Message})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, indexPage, http.StatusTemporaryRedirect)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, StatusResponse{Status: "healthy"})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.ReadyTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, c := range h.config.Checks {
		if err := c.Check(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}

	if len(failed) > 0 {
		h.logger.Warn("readiness check failed", map[string]interface{}{"failed": failed})
		apperrors.WriteJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "not ready", Failed: failed})
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}
