package timesheethandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"roster/internal/domain/audit"
	"roster/internal/domain/schedule"
	"roster/internal/domain/timesheet"
	"roster/internal/platform/clock"
	"roster/internal/platform/jobs"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

type Handler struct {
	Service *timesheet.Service
	Scanner *timesheet.Scanner
	Jobs    *jobs.Service
	Audit   *audit.Service
	Clock   clock.Clock
}

func NewHandler(service *timesheet.Service, scanner *timesheet.Scanner, jobsSvc *jobs.Service, auditSvc *audit.Service, clk clock.Clock) *Handler {
	return &Handler{Service: service, Scanner: scanner, Jobs: jobsSvc, Audit: auditSvc, Clock: clk}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/time-entries", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Put("/{entryID}", h.handleUpdate)
		r.Delete("/{entryID}", h.handleDelete)
	})
	r.With(middleware.RequireManager).Post("/scans/missing-hours", h.handleRunScan)
}

type entryRequest struct {
	AssignmentID string          `json:"assignmentId" validate:"required"`
	WorkerID     string          `json:"workerId"`
	Hours        decimal.Decimal `json:"hours"`
	ActualStart  string          `json:"actualStart" validate:"omitempty,hhmm"`
	ActualEnd    string          `json:"actualEnd" validate:"omitempty,hhmm"`
	Breaks       []breakPayload  `json:"breaks" validate:"dive"`
	Note         string          `json:"note" validate:"max=1000"`
}

type breakPayload struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

// entryUpdateRequest drops assignmentId and workerId; the entry already
// carries both.
type entryUpdateRequest struct {
	Hours       decimal.Decimal `json:"hours"`
	ActualStart string          `json:"actualStart" validate:"omitempty,hhmm"`
	ActualEnd   string          `json:"actualEnd" validate:"omitempty,hhmm"`
	Breaks      []breakPayload  `json:"breaks" validate:"dive"`
	Note        string          `json:"note" validate:"max=1000"`
}

func toBreaks(payload []breakPayload) []schedule.BreakWindow {
	if len(payload) == 0 {
		return nil
	}
	out := make([]schedule.BreakWindow, 0, len(payload))
	for _, b := range payload {
		out = append(out, schedule.BreakWindow{Start: b.Start, End: b.End})
	}
	return out
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload entryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := shared.Check(payload); issues != nil {
		shared.FailValidation(w, reqID, issues)
		return
	}

	workerID := payload.WorkerID
	if workerID == "" {
		workerID = actor.WorkerID
	}

	entry, err := h.Service.Create(r.Context(), actor, timesheet.EntryParams{
		AssignmentID: payload.AssignmentID,
		WorkerID:     workerID,
		Hours:        payload.Hours,
		ActualStart:  payload.ActualStart,
		ActualEnd:    payload.ActualEnd,
		Breaks:       toBreaks(payload.Breaks),
		Note:         payload.Note,
	})
	if err != nil {
		h.fail(w, reqID, err, "entry_create_failed", "failed to create time entry")
		return
	}
	api.Created(w, entry, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	workerID := r.URL.Query().Get("workerId")
	if workerID == "" {
		workerID = actor.WorkerID
	}

	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be a valid date", reqID)
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be a valid date", reqID)
		return
	}
	if to.IsZero() {
		to = h.Clock.Today()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	entries, err := h.Service.ListForWorker(r.Context(), actor, workerID, from, to)
	if err != nil {
		h.fail(w, reqID, err, "entry_list_failed", "failed to list time entries")
		return
	}
	api.Success(w, entries, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var payload entryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := shared.Check(payload); issues != nil {
		shared.FailValidation(w, reqID, issues)
		return
	}

	entry, err := h.Service.Update(r.Context(), actor, chi.URLParam(r, "entryID"), timesheet.EntryUpdateParams{
		Hours:       payload.Hours,
		ActualStart: payload.ActualStart,
		ActualEnd:   payload.ActualEnd,
		Breaks:      toBreaks(payload.Breaks),
		Note:        payload.Note,
	})
	if err != nil {
		h.fail(w, reqID, err, "entry_update_failed", "failed to update time entry")
		return
	}
	api.Success(w, entry, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	if err := h.Service.Delete(r.Context(), actor, chi.URLParam(r, "entryID")); err != nil {
		h.fail(w, reqID, err, "entry_delete_failed", "failed to delete time entry")
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, reqID)
}

type scanRequest struct {
	From     string `json:"from" validate:"required"`
	To       string `json:"to" validate:"required"`
	WorkerID string `json:"workerId"`
}

// handleRunScan triggers an on-demand missing-hours scan. Runs synchronously
// so the caller gets the result, but still goes through the job service for
// the job_runs audit trail.
func (h *Handler) handleRunScan(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload scanRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := shared.Check(payload); issues != nil {
		shared.FailValidation(w, reqID, issues)
		return
	}

	from, err := shared.ParseDate(payload.From)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be a valid date", reqID)
		return
	}
	to, err := shared.ParseDate(payload.To)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be a valid date", reqID)
		return
	}

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobMissingHoursScan, func(ctx context.Context) (any, error) {
		return h.Scanner.Run(ctx, from, to, timesheet.ModeAdHoc, payload.WorkerID)
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "scan_failed", "missing-hours scan failed", reqID)
		return
	}

	actor, _ := middleware.GetActor(r.Context())
	if err := h.Audit.Record(r.Context(), actor.UserID, "timesheet.scan", "scan", "", reqID, map[string]any{
		"from": payload.From, "to": payload.To, "workerId": payload.WorkerID,
	}); err != nil {
		slog.Warn("audit timesheet.scan failed", "err", err)
	}
	api.Success(w, result, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, reqID string, err error, code, message string) {
	switch {
	case errors.Is(err, timesheet.ErrNotFound) || errors.Is(err, schedule.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", reqID)
	case errors.Is(err, timesheet.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", reqID)
	case errors.Is(err, timesheet.ErrDuplicateEntry):
		api.Fail(w, http.StatusConflict, "duplicate_entry", err.Error(), reqID)
	case errors.Is(err, timesheet.ErrNotMember) || errors.Is(err, timesheet.ErrFutureDate):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
