package unavailabilityhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/audit"
	"roster/internal/domain/unavailability"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

type Handler struct {
	Service *unavailability.Service
	Audit   *audit.Service
}

func NewHandler(service *unavailability.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/unavailabilities", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{unavailabilityID}", h.handleGet)
		r.Put("/{unavailabilityID}", h.handleUpdate)
		r.Delete("/{unavailabilityID}", h.handleDelete)
		r.With(middleware.RequireManager).Post("/{unavailabilityID}/approve", h.handleApprove)
	})
}

type upsertRequest struct {
	WorkerID  string `json:"workerId"`
	DateStart string `json:"dateStart" validate:"required"`
	DateEnd   string `json:"dateEnd" validate:"required"`
	StartTime string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime   string `json:"endTime" validate:"omitempty,hhmm"`
	Note      string `json:"note" validate:"max=1000"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := shared.Check(payload); issues != nil {
		shared.FailValidation(w, reqID, issues)
		return
	}

	dateStart, err := shared.ParseDate(payload.DateStart)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dateStart must be a valid date", reqID)
		return
	}
	dateEnd, err := shared.ParseDate(payload.DateEnd)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dateEnd must be a valid date", reqID)
		return
	}

	workerID := payload.WorkerID
	if workerID == "" {
		workerID = actor.WorkerID
	}

	result, err := h.Service.Create(r.Context(), actor, unavailability.CreateParams{
		WorkerID:  workerID,
		DateStart: dateStart,
		DateEnd:   dateEnd,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Note:      payload.Note,
	})
	if err != nil {
		h.fail(w, reqID, err, "unavailability_create_failed", "failed to create unavailability")
		return
	}
	api.Created(w, map[string]any{
		"record":      result.Record,
		"hadConflict": result.HadConflict,
	}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	workerID := r.URL.Query().Get("workerId")
	var (
		items []unavailability.Unavailability
		err   error
	)
	switch {
	case workerID != "":
		if !actor.CanManage(workerID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another worker's unavailabilities", reqID)
			return
		}
		items, err = h.Service.Store.ListForWorker(r.Context(), workerID, page.Limit, page.Offset)
	case actor.Manager:
		items, err = h.Service.Store.List(r.Context(), page.Limit, page.Offset)
	default:
		items, err = h.Service.Store.ListForWorker(r.Context(), actor.WorkerID, page.Limit, page.Offset)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "unavailability_list_failed", "failed to list unavailabilities", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	record, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "unavailabilityID"))
	if err != nil {
		h.fail(w, reqID, err, "unavailability_get_failed", "failed to load unavailability")
		return
	}
	api.Success(w, record, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := shared.Check(payload); issues != nil {
		shared.FailValidation(w, reqID, issues)
		return
	}

	dateStart, err := shared.ParseDate(payload.DateStart)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dateStart must be a valid date", reqID)
		return
	}
	dateEnd, err := shared.ParseDate(payload.DateEnd)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dateEnd must be a valid date", reqID)
		return
	}

	record, err := h.Service.Update(r.Context(), actor, chi.URLParam(r, "unavailabilityID"), unavailability.UpdateParams{
		DateStart: dateStart,
		DateEnd:   dateEnd,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Note:      payload.Note,
	})
	if err != nil {
		h.fail(w, reqID, err, "unavailability_update_failed", "failed to update unavailability")
		return
	}
	api.Success(w, record, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	result, err := h.Service.Approve(r.Context(), actor, chi.URLParam(r, "unavailabilityID"))
	if err != nil {
		h.fail(w, reqID, err, "unavailability_approve_failed", "failed to approve unavailability")
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "unavailability.approve", "unavailability", result.Record.ID, reqID, map[string]any{
		"detachedAssignmentIds": result.DetachedAssignmentIDs,
	}); err != nil {
		slog.Warn("audit unavailability.approve failed", "err", err)
	}
	api.Success(w, map[string]any{
		"record":                result.Record,
		"detachedAssignmentIds": result.DetachedAssignmentIDs,
	}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	id := chi.URLParam(r, "unavailabilityID")
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, reqID, err, "unavailability_delete_failed", "failed to delete unavailability")
		return
	}
	if err := h.Audit.Record(r.Context(), actor.UserID, "unavailability.delete", "unavailability", id, reqID, nil); err != nil {
		slog.Warn("audit unavailability.delete failed", "err", err)
	}
	api.Success(w, map[string]bool{"deleted": true}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, reqID string, err error, code, message string) {
	switch {
	case errors.Is(err, unavailability.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "unavailability not found", reqID)
	case errors.Is(err, unavailability.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", reqID)
	case errors.Is(err, unavailability.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), reqID)
	case errors.Is(err, unavailability.ErrInvalidRange) || errors.Is(err, unavailability.ErrInvalidWindow):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
