package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mesias/mswdo-backend/internal/welfare/service"
	"github.com/mesias/mswdo-backend/pkg/actor"
	"github.com/mesias/mswdo-backend/pkg/httputil"
)

// NotificationHandler serves the caller's inbox
type NotificationHandler struct {
	service *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/read", h.MarkRead)
	r.Delete("/{id}", h.Delete)
}

// List returns the caller's notifications, newest first. ?unread=true
// narrows to unread ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	list, err := h.service.List(r.Context(), actor.FromContext(r.Context()), unread)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNotificationInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	n, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, n)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkRead(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
