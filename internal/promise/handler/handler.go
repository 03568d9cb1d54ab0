// Package handler exposes the promise, share, and evaluation endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pinky/internal/platform/middleware"
	promiseModel "pinky/internal/promise/models"
	"pinky/internal/promise/service"
	"pinky/internal/transport/http/shared"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/requestcontext"
)

// Service defines the promise operations the handler depends on.
type Service interface {
	CreatePromise(ctx context.Context, ownerID id.UserID, req promiseModel.CreatePromiseRequest) (*promiseModel.Promise, error)
	GetPromise(ctx context.Context, promiseID id.PromiseID) (*promiseModel.Promise, error)
	DeletePromise(ctx context.Context, promiseID id.PromiseID, requesterID id.UserID) error
	IssueShare(ctx context.Context, promiseID id.PromiseID, requesterID id.UserID) (*promiseModel.Share, error)
	ResolveShare(ctx context.Context, ref promiseModel.ShareRef) (*promiseModel.Share, error)
	SubmitEvaluation(ctx context.Context, ref promiseModel.ShareRef, identity promiseModel.EvaluatorIdentity, outcome promiseModel.Outcome) (*service.EvaluationResult, error)
}

// Handler handles promise-related endpoints.
type Handler struct {
	logger       *slog.Logger
	promises     Service
	jwtValidator middleware.JWTValidator
	shareBaseURL string
}

// New creates a new promise Handler. shareBaseURL is the public prefix shared
// links are minted under.
func New(promises Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, shareBaseURL string) *Handler {
	return &Handler{
		logger:       logger,
		promises:     promises,
		jwtValidator: jwtValidator,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
	}
}

// Register mounts the promise routes. Evaluation and share resolution are
// public: counterparties follow a link, they do not log in. Everything that
// mutates a promise requires the owner's token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/promise", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Post("/", h.handleCreatePromise)
			r.Get("/{promID}", h.handleGetPromise)
			r.Delete("/{promID}", h.handleDeletePromise)
			r.Post("/{promID}/share", h.handleIssueShare)
		})

		r.Get("/share/{token}", h.handleResolveShare)
		r.Post("/share/{shareID}/eval", h.handleSubmitEvaluation)
		r.Post("/share/{shareID}/eval/temp", h.handleSubmitGuestEvaluation)
	})
}

func (h *Handler) handleCreatePromise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req promiseModel.CreatePromiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	promise, err := h.promises.CreatePromise(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		h.logWarn(ctx, "create promise failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, promise)
}

func (h *Handler) handleGetPromise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	promiseID, err := id.ParsePromiseID(chi.URLParam(r, "promID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid promise id"))
		return
	}

	promise, err := h.promises.GetPromise(ctx, promiseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if promise.OwnerID != requestcontext.UserID(ctx) {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not your promise"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, promise)
}

func (h *Handler) handleDeletePromise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	promiseID, err := id.ParsePromiseID(chi.URLParam(r, "promID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid promise id"))
		return
	}

	if err := h.promises.DeletePromise(ctx, promiseID, requestcontext.UserID(ctx)); err != nil {
		h.logWarn(ctx, "delete promise failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type shareResponse struct {
	ShareID  string `json:"shareId"`
	Token    string `json:"token"`
	ShareURL string `json:"shareUrl"`
}

func (h *Handler) handleIssueShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	promiseID, err := id.ParsePromiseID(chi.URLParam(r, "promID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid promise id"))
		return
	}

	share, err := h.promises.IssueShare(ctx, promiseID, requestcontext.UserID(ctx))
	if err != nil {
		h.logWarn(ctx, "issue share failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, shareResponse{
		ShareID:  share.ID.String(),
		Token:    share.Token,
		ShareURL: h.shareBaseURL + "/promise/share/" + share.Token,
	})
}

type resolvedShareResponse struct {
	ShareID     string                `json:"shareId"`
	Promise     *promiseModel.Promise `json:"promise"`
	CheckStatus int                   `json:"checkStatus"`
	Score       int                   `json:"score"`
	Feedback    string                `json:"feedback"`
}

func (h *Handler) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := chi.URLParam(r, "token")
	share, err := h.promises.ResolveShare(ctx, promiseModel.ShareRefByToken(token))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	promise, err := h.promises.GetPromise(ctx, share.PromiseID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, resolvedShareResponse{
		ShareID:     share.ID.String(),
		Promise:     promise,
		CheckStatus: int(share.CheckStatus),
		Score:       share.Score,
		Feedback:    share.Feedback,
	})
}

type evaluationResponse struct {
	ShareID     string `json:"shareId"`
	CheckStatus int    `json:"checkStatus"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	TempID      string `json:"tempId,omitempty"`
	SignupHint  bool   `json:"signupHint,omitempty"`
}

func (h *Handler) handleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shareID, err := id.ParseShareID(chi.URLParam(r, "shareID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid share id"))
		return
	}

	var req promiseModel.SubmitEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}
	status, err := promiseModel.ParseCheckStatus(*req.CheckStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.promises.SubmitEvaluation(ctx,
		promiseModel.ShareRefByID(shareID),
		promiseModel.Registered(userID),
		promiseModel.Outcome{CheckStatus: status, Score: req.Score, Feedback: req.Feedback},
	)
	if err != nil {
		h.logWarn(ctx, "evaluation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, evaluationResult(result))
}

func (h *Handler) handleSubmitGuestEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shareID, err := id.ParseShareID(chi.URLParam(r, "shareID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid share id"))
		return
	}

	var req promiseModel.SubmitGuestEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}
	status, err := promiseModel.ParseCheckStatus(*req.CheckStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	identity := promiseModel.NewGuest(req.TempName)
	if req.TempID != "" {
		guestID, err := id.ParseGuestID(req.TempID)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid temp id"))
			return
		}
		identity = promiseModel.Guest(guestID)
	}

	result, err := h.promises.SubmitEvaluation(ctx,
		promiseModel.ShareRefByID(shareID),
		identity,
		promiseModel.Outcome{CheckStatus: status, Score: req.Score, Feedback: req.Feedback},
	)
	if err != nil {
		h.logWarn(ctx, "guest evaluation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, evaluationResult(result))
}

func evaluationResult(result *service.EvaluationResult) evaluationResponse {
	resp := evaluationResponse{
		ShareID:     result.Share.ID.String(),
		CheckStatus: int(result.Share.CheckStatus),
		Score:       result.Share.Score,
		Feedback:    result.Share.Feedback,
		SignupHint:  result.SignupHint,
	}
	if result.Evaluation.GuestID != nil {
		resp.TempID = result.Evaluation.GuestID.String()
	}
	return resp
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
