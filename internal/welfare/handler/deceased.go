package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/service"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/httputil"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// DeceasedHandler handles deceased report endpoints
type DeceasedHandler struct {
	service *service.DeceasedService
	logger  *logger.Logger
}

// NewDeceasedHandler creates a new deceased report handler
func NewDeceasedHandler(svc *service.DeceasedService, log *logger.Logger) *DeceasedHandler {
	return &DeceasedHandler{
		service: svc,
		logger:  log,
	}
}

func (h *DeceasedHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *DeceasedHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.Pagination(r)

	reports, total, err := h.service.List(r.Context(), actor.FromContext(r.Context()), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, reports, httputil.PageMeta(page, perPage, total))
}

func (h *DeceasedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.DeceasedReportInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, report)
}

func (h *DeceasedHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Get(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Update confirms a report when the body is {"confirmed": true}.
func (h *DeceasedHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirmed *bool `json:"confirmed"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req.Confirmed)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

func (h *DeceasedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
