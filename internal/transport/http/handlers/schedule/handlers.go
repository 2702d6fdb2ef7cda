package schedulehandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/schedule"
	"roster/internal/platform/clock"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

type Handler struct {
	Store schedule.StoreAPI
	Clock clock.Clock
}

func NewHandler(store schedule.StoreAPI, clk clock.Clock) *Handler {
	return &Handler{Store: store, Clock: clk}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assignments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{assignmentID}", h.handleGet)
	})
}

// assignmentView is an Assignment plus the viewing worker's duty, so a
// worker sees at a glance what they are attached as.
type assignmentView struct {
	schedule.Assignment
	MyDuty string `json:"myDuty,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	workerID := r.URL.Query().Get("workerId")
	if workerID == "" {
		workerID = actor.WorkerID
	}
	if !actor.CanManage(workerID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another worker's assignments", reqID)
		return
	}
	if workerID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_worker", "workerId is required", reqID)
		return
	}

	from, to, ok := h.parseRange(w, r, reqID)
	if !ok {
		return
	}

	assignments, err := h.Store.ListShiftsForWorker(r.Context(), workerID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assignments_failed", "failed to list assignments", reqID)
		return
	}

	views := make([]assignmentView, 0, len(assignments))
	for _, a := range assignments {
		duty, _ := a.DutyFor(workerID)
		views = append(views, assignmentView{Assignment: a, MyDuty: duty})
	}
	api.Success(w, views, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	a, err := h.Store.GetAssignment(r.Context(), chi.URLParam(r, "assignmentID"))
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "assignment not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "assignment_failed", "failed to load assignment", reqID)
		return
	}
	if !actor.Manager && !a.HasWorker(actor.WorkerID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not a member of this assignment", reqID)
		return
	}
	duty, _ := a.DutyFor(actor.WorkerID)
	api.Success(w, assignmentView{Assignment: a, MyDuty: duty}, reqID)
}

// parseRange reads from/to query dates, defaulting to the current month.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request, reqID string) (time.Time, time.Time, bool) {
	today := h.Clock.Today()
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	to := from.AddDate(0, 1, -1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be a valid date", reqID)
			return time.Time{}, time.Time{}, false
		}
		from = clock.Midnight(parsed)
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be a valid date", reqID)
			return time.Time{}, time.Time{}, false
		}
		to = clock.Midnight(parsed)
	}
	if to.Before(from) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", "to must not be before from", reqID)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
