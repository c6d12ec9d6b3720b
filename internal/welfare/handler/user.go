package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/internal/welfare/service"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/errors"
	"github.com/mesias/mswdo-backend/pkg/httputil"
	"github.com/mesias/mswdo-backend/pkg/logger"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	service *service.UserService
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  log,
	}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.With(officeOnly).Get("/stats/counts", h.Counts)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/assignments", h.Assignments)
		r.Post("/assignments", h.Assign)
		r.Delete("/assignments/{assignmentId}", h.Unassign)
	})
}

// List lists users, optionally filtered by ?user_type=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var role *domain.Role
	if v := r.URL.Query().Get("user_type"); v != "" {
		rl := domain.Role(v)
		if !rl.Valid() {
			httputil.Error(w, errors.Validation(map[string]string{"user_type": "must be one of: beneficiary bhw mswdo admin"}))
			return
		}
		role = &rl
	}
	page, perPage := httputil.Pagination(r)

	users, total, err := h.service.List(r.Context(), actor.FromContext(r.Context()), role, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, users, httputil.PageMeta(page, perPage, total))
}

// Create creates a user of any role
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	u, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, u)
}

// Get gets a user by ID
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, u)
}

// Update updates profile fields of a user
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UserUpdate
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	u, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, u)
}

// Delete deletes a user and everything owned by them
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Counts returns user totals per role
func (h *UserHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Counts(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, counts)
}

// Assignments lists a health worker's barangays
func (h *UserHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Assignments(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Assign grants a health worker a barangay
func (h *UserHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req service.AssignmentInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	a, err := h.service.Assign(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, a)
}

// Unassign removes a barangay assignment
func (h *UserHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	err := h.service.Unassign(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "assignmentId"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
