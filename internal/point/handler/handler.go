// Package handler exposes the point-policy catalog and disbursement
// endpoints. All routes sit behind the admin token: disbursement is triggered
// by trusted backends reacting to activity events, never by end users.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pinky/internal/platform/middleware"
	pointModel "pinky/internal/point/models"
	"pinky/internal/transport/http/shared"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/requestcontext"
)

// Service defines the point operations the handler depends on.
type Service interface {
	CreatePolicy(ctx context.Context, req pointModel.CreatePolicyRequest) (*pointModel.PointPolicy, error)
	GetPolicy(ctx context.Context, policyID id.PolicyID) (*pointModel.PointPolicy, error)
	ListPolicies(ctx context.Context) ([]*pointModel.PointPolicy, error)
	UpdatePolicy(ctx context.Context, policyID id.PolicyID, req pointModel.UpdatePolicyRequest) (*pointModel.PointPolicy, error)
	DeletePolicy(ctx context.Context, policyID id.PolicyID) error
	Disburse(ctx context.Context, userID id.UserID, policyID id.PolicyID, activity pointModel.ActivityRef, reason string) (*pointModel.LedgerEntry, error)
	LedgerForUser(ctx context.Context, userID id.UserID) ([]*pointModel.LedgerEntry, error)
}

// Handler handles point-related endpoints.
type Handler struct {
	logger         *slog.Logger
	points         Service
	adminTokenHash string
}

// New creates a new point Handler.
func New(points Service, logger *slog.Logger, adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		points:         points,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts the point routes behind the admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Route("/point", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))

		r.Post("/policy", h.handleCreatePolicy)
		r.Get("/policy", h.handleListPolicies)
		r.Get("/policy/{policyID}", h.handleGetPolicy)
		r.Put("/policy/{policyID}", h.handleUpdatePolicy)
		r.Delete("/policy/{policyID}", h.handleDeletePolicy)

		r.Post("/pay", h.handlePay)
		r.Get("/ledger/{userID}", h.handleLedger)
	})
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req pointModel.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	policy, err := h.points.CreatePolicy(ctx, req)
	if err != nil {
		h.logWarn(ctx, "create policy failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, policy)
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.points.ListPolicies(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return
	}
	policy, err := h.points.GetPolicy(r.Context(), policyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return
	}
	var req pointModel.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	policy, err := h.points.UpdatePolicy(ctx, policyID, req)
	if err != nil {
		h.logWarn(ctx, "update policy failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return
	}
	if err := h.points.DeletePolicy(ctx, policyID); err != nil {
		h.logWarn(ctx, "delete policy failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type payResponse struct {
	EntryID string `json:"entryId"`
	UserID  string `json:"userId"`
	Delta   int64  `json:"delta"`
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req pointModel.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	policyID, err := id.ParsePolicyID(req.PointPolicyID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return
	}
	activity, err := req.Activity()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entry, err := h.points.Disburse(ctx, userID, policyID, activity, req.Reason)
	if err != nil {
		h.logWarn(ctx, "disbursement refused", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, payResponse{
		EntryID: entry.ID.String(),
		UserID:  entry.UserID.String(),
		Delta:   entry.Delta,
	})
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	entries, err := h.points.LedgerForUser(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
