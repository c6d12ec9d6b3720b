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

// BeneficiaryHandler handles beneficiary profile endpoints
type BeneficiaryHandler struct {
	service *service.BeneficiaryService
	logger  *logger.Logger
}

// NewBeneficiaryHandler creates a new beneficiary handler
func NewBeneficiaryHandler(svc *service.BeneficiaryService, log *logger.Logger) *BeneficiaryHandler {
	return &BeneficiaryHandler{
		service: svc,
		logger:  log,
	}
}

func (h *BeneficiaryHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.With(officeOnly).Get("/stats/barangays", h.BarangayStats)
	r.Get("/user/{userId}", h.GetByUser)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
}

// List lists visible beneficiaries
func (h *BeneficiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := httputil.Pagination(r)

	items, total, err := h.service.List(r.Context(), actor.FromContext(r.Context()), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, items, httputil.PageMeta(page, perPage, total))
}

// Create creates the caller's own profile
func (h *BeneficiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.BeneficiaryInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	b, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, b)
}

// Get gets a beneficiary by ID
func (h *BeneficiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, b)
}

// GetByUser gets the profile belonging to a user
func (h *BeneficiaryHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetByUser(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, b)
}

// Update patches a profile
func (h *BeneficiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.BeneficiaryUpdate
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	b, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, b)
}

// BarangayStats returns per-barangay classification counts
func (h *BeneficiaryHandler) BarangayStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.BarangayStats(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
