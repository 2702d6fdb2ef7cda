package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"roster/internal/domain/auth"
	"roster/internal/domain/workers"
	"roster/internal/transport/http/api"
	"roster/internal/transport/http/middleware"
	"roster/internal/transport/http/shared"
)

const tokenTTL = 14 * 24 * time.Hour

type Handler struct {
	Users   *auth.Store
	Workers workers.StoreAPI
	Secret  string
}

func NewHandler(users *auth.Store, workerStore workers.StoreAPI, secret string) *Handler {
	return &Handler{Users: users, Workers: workerStore, Secret: secret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireAuth).Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	WorkerID string `json:"workerId,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if issues := shared.Check(payload); issues != nil {
		shared.FailValidation(w, reqID, issues)
		return
	}

	user, err := h.Users.GetUserByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}

	workerID := ""
	if worker, err := h.Workers.GetByUserID(r.Context(), user.ID); err == nil {
		workerID = worker.ID
	} else if !errors.Is(err, workers.ErrNotFound) {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		WorkerID: workerID,
		Role:     user.Role,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}

	api.Success(w, loginResponse{Token: token, Role: user.Role, WorkerID: workerID}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	resp := map[string]any{
		"userId":  actor.UserID,
		"manager": actor.Manager,
	}
	if actor.WorkerID != "" {
		worker, err := h.Workers.Get(r.Context(), actor.WorkerID)
		if err == nil {
			resp["worker"] = worker
		}
	}
	api.Success(w, resp, reqID)
}
