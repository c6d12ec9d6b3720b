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

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApplicationHandler handles application endpoints
type ApplicationHandler struct {
	engine *service.Engine
	logger *logger.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(engine *service.Engine, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		engine: engine,
		logger: log,
	}
}

// Routes mounts the application endpoints.
func (h *ApplicationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Submit)
	r.Get("/stats/counts", h.Counts)
	r.With(officeOnly).Get("/export", h.Export)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Patch)
		r.Post("/verify", h.Verify)
		r.Post("/approve", h.Approve)
		r.Post("/deny", h.Deny)
		r.Post("/schedule", h.Schedule)
		r.Get("/schedule", h.GetSchedule)
		r.Post("/schedule/claim", h.Claim)
	})
}

// List lists the caller's visible applications
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := applicationFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	page, perPage := httputil.Pagination(r)

	apps, total, err := h.engine.List(r.Context(), actor.FromContext(r.Context()), filter, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, apps, httputil.PageMeta(page, perPage, total))
}

// Submit creates a pending application for the calling beneficiary
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	app, err := h.engine.Submit(r.Context(), actor.FromContext(r.Context()), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, app)
}

// Get gets an application by ID
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.engine.Get(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// Patch updates notes or routes a status change through the workflow
func (h *ApplicationHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req service.PatchInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	app, err := h.engine.Patch(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, app)
}

// Counts returns per-status counts of visible applications
func (h *ApplicationHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.engine.Counts(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, counts)
}

// Export streams the application register as an XLSX workbook
func (h *ApplicationHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := applicationFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	data, err := h.engine.Export(r.Context(), actor.FromContext(r.Context()), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="applications.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write export")
	}
}

// Verify records the health worker decision
func (h *ApplicationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	h.respond(w)(h.engine.Verify(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req))
}

// Approve records the office approval
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req service.ApproveInput
	if err := decodeOptional(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	h.respond(w)(h.engine.Approve(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req))
}

// Deny denies the application
func (h *ApplicationHandler) Deny(w http.ResponseWriter, r *http.Request) {
	var req service.DenyInput
	if err := decodeOptional(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	h.respond(w)(h.engine.Deny(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req))
}

// Schedule creates the release schedule
func (h *ApplicationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req service.ScheduleInput
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	h.respond(w)(h.engine.Schedule(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req))
}

// GetSchedule returns the release schedule
func (h *ApplicationHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.engine.GetSchedule(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, schedule)
}

// Claim marks the benefit as handed out
func (h *ApplicationHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req service.ClaimInput
	if err := decodeOptional(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	h.respond(w)(h.engine.Claim(r.Context(), actor.FromContext(r.Context()), chi.URLParam(r, "id"), req))
}

func (h *ApplicationHandler) respond(w http.ResponseWriter) func(*domain.ApplicationView, error) {
	return func(app *domain.ApplicationView, err error) {
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, app)
	}
}

func applicationFilter(r *http.Request) (domain.ApplicationFilter, error) {
	q := r.URL.Query()
	filter := domain.ApplicationFilter{ProgramID: q.Get("program_id")}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}
