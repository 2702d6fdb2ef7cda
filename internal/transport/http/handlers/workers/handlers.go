package workershandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/workers"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

type Handler struct {
	Store workers.StoreAPI
}

func NewHandler(store workers.StoreAPI) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/workers", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireManager).Get("/", h.handleList)
		r.Get("/{workerID}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	list, err := h.Store.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "workers_failed", "failed to list workers", reqID)
		return
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	workerID := chi.URLParam(r, "workerID")
	if !actor.CanManage(workerID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another worker", reqID)
		return
	}

	worker, err := h.Store.Get(r.Context(), workerID)
	if err != nil {
		if errors.Is(err, workers.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "worker not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "workers_failed", "failed to load worker", reqID)
		return
	}
	api.Success(w, worker, reqID)
}
