// Package handler exposes user registration and lookup.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pinky/internal/platform/middleware"
	"pinky/internal/transport/http/shared"
	userModel "pinky/internal/user/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/requestcontext"
)

// Service defines the user operations the handler depends on.
type Service interface {
	Register(ctx context.Context, req userModel.CreateUserRequest) (*userModel.User, string, error)
	Get(ctx context.Context, userID id.UserID) (*userModel.User, error)
}

// Handler handles user-related endpoints.
type Handler struct {
	logger       *slog.Logger
	users        Service
	jwtValidator middleware.JWTValidator
}

// New creates a new user Handler.
func New(users Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		users:        users,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the user routes. Registration is open; lookup requires the
// caller's own token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Post("/", h.handleCreateUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Get("/{userID}", h.handleGetUser)
		})
	})
}

type createUserResponse struct {
	User        *userModel.User `json:"user"`
	AccessToken string          `json:"accessToken"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req userModel.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, token, err := h.users.Register(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "user registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, createUserResponse{User: user, AccessToken: token})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	if userID != requestcontext.UserID(ctx) {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not your account"))
		return
	}

	user, err := h.users.Get(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}
