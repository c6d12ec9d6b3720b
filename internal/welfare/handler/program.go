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

// ProgramHandler handles assistance program endpoints
type ProgramHandler struct {
	service *service.ProgramService
	logger  *logger.Logger
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(svc *service.ProgramService, log *logger.Logger) *ProgramHandler {
	return &ProgramHandler{
		service: svc,
		logger:  log,
	}
}

func (h *ProgramHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/eligibility", h.Eligibility)
}

func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.List(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, programs)
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProgramInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, p)
}

func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ProgramUpdate
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	p, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, p)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Eligibility reports whether a beneficiary may apply right now.
// Staff pass ?beneficiary_id=; beneficiaries are checked against their own profile.
func (h *ProgramHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Eligibility(r.Context(), actor.FromContext(r.Context()),
		chi.URLParam(r, "id"), r.URL.Query().Get("beneficiary_id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
