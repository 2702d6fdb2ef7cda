package notificationshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/notifications"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/count", h.handleCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	if actor.WorkerID == "" {
		api.Success(w, []notifications.Notification{}, reqID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.List(r.Context(), actor.WorkerID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to list notifications", reqID)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	if actor.WorkerID == "" {
		api.Success(w, map[string]int{"count": 0}, reqID)
		return
	}

	count, err := h.Service.Count(r.Context(), actor.WorkerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to count notifications", reqID)
		return
	}
	api.Success(w, map[string]int{"count": count}, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	if actor.WorkerID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "no worker profile", reqID)
		return
	}

	if err := h.Service.MarkRead(r.Context(), actor.WorkerID, chi.URLParam(r, "notificationID")); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notification read", reqID)
		return
	}
	api.Success(w, map[string]bool{"read": true}, reqID)
}
