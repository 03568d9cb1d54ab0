package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinky/internal/platform/middleware"
	"pinky/internal/promise/handler"
	"pinky/internal/promise/models"
	"pinky/internal/promise/service"
	evaluationstore "pinky/internal/promise/store/evaluation"
	gueststore "pinky/internal/promise/store/guest"
	promisestore "pinky/internal/promise/store/promise"
	sharestore "pinky/internal/promise/store/share"
	usermodels "pinky/internal/user/models"
	userstore "pinky/internal/user/store"
	id "pinky/pkg/domain"
	"pinky/pkg/testutil"
)

// stubValidator resolves any bearer token to a fixed user.
type stubValidator struct {
	userID id.UserID
}

func (v *stubValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return &middleware.JWTClaims{UserID: v.userID}, nil
}

type env struct {
	router *chi.Mux
	svc    *service.Service
	owner  id.UserID
	friend id.UserID
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := userstore.NewMemory()
	shares := sharestore.NewMemory()
	svc, err := service.New(
		promisestore.NewMemory(),
		shares,
		gueststore.NewMemory(),
		evaluationstore.NewMemory(shares),
		users,
	)
	require.NoError(t, err)

	owner := addUser(t, users, "owner")
	friend := addUser(t, users, "friend")

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	handler.New(svc, testutil.Logger(), &stubValidator{userID: owner}, "https://pinky.app").Register(router)

	return &env{router: router, svc: svc, owner: owner, friend: friend}
}

func addUser(t *testing.T, users *userstore.Memory, nickname string) id.UserID {
	t.Helper()
	user := &usermodels.User{
		ID:        id.NewUserID(),
		Nickname:  nickname,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user.ID
}

func (e *env) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer test-token")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) issueShare(t *testing.T) (shareID, token string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/promise", map[string]any{"title": "call grandma"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var promise models.Promise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &promise))

	rec = e.do(t, http.MethodPost, fmt.Sprintf("/promise/%s/share", promise.ID), nil, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ShareID  string `json:"shareId"`
		Token    string `json:"token"`
		ShareURL string `json:"shareUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.ShareURL, resp.Token)
	return resp.ShareID, resp.Token
}

func TestCreatePromise_RequiresAuth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/promise", map[string]any{"title": "x"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePromise_RejectsBlankTitle(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/promise", map[string]any{"title": "  "}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveShare_PublicByToken(t *testing.T) {
	e := newEnv(t)
	shareID, token := e.issueShare(t)

	rec := e.do(t, http.MethodGet, "/promise/share/"+token, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ShareID     string         `json:"shareId"`
		Promise     map[string]any `json:"promise"`
		CheckStatus int            `json:"checkStatus"`
		Score       int            `json:"score"`
		Feedback    string         `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, shareID, resp.ShareID)
	assert.Equal(t, "call grandma", resp.Promise["title"])
	assert.Equal(t, models.DefaultScore, resp.Score)
	assert.Equal(t, models.DefaultFeedback, resp.Feedback)
}

func TestResolveShare_UnknownToken(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/promise/share/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitEvaluation_Registered(t *testing.T) {
	e := newEnv(t)
	shareID, _ := e.issueShare(t)

	body := map[string]any{
		"userId":      e.friend.String(),
		"checkStatus": 1,
		"score":       4,
		"feedback":    "close enough",
	}
	rec := e.do(t, http.MethodPost, "/promise/share/"+shareID+"/eval", body, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		CheckStatus int    `json:"checkStatus"`
		Score       int    `json:"score"`
		Feedback    string `json:"feedback"`
		SignupHint  bool   `json:"signupHint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.CheckStatus)
	assert.Equal(t, 4, resp.Score)
	assert.False(t, resp.SignupHint)

	// Second verdict is a conflict.
	rec = e.do(t, http.MethodPost, "/promise/share/"+shareID+"/eval", body, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitEvaluation_RejectsBadCheckStatus(t *testing.T) {
	e := newEnv(t)
	shareID, _ := e.issueShare(t)

	// 255, 256, 257 and -255 would collide with valid verdicts if the value
	// were narrowed to int8 before the range check.
	for _, status := range []int{2, -2, 255, 256, 257, -255} {
		rec := e.do(t, http.MethodPost, "/promise/share/"+shareID+"/eval", map[string]any{
			"userId":      e.friend.String(),
			"checkStatus": status,
		}, false)
		assert.Equalf(t, http.StatusBadRequest, rec.Code, "checkStatus %d must be rejected", status)
	}

	rec := e.do(t, http.MethodPost, "/promise/share/"+shareID+"/eval", map[string]any{
		"userId": e.friend.String(),
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "checkStatus is required")

	// The share stays unevaluated and accepts a well-formed verdict.
	rec = e.do(t, http.MethodPost, "/promise/share/"+shareID+"/eval", map[string]any{
		"userId":      e.friend.String(),
		"checkStatus": -1,
	}, false)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubmitGuestEvaluation_MintsAndHints(t *testing.T) {
	e := newEnv(t)
	shareID, _ := e.issueShare(t)

	rec := e.do(t, http.MethodPost, "/promise/share/"+shareID+"/eval/temp", map[string]any{
		"tempName":    "Mina",
		"checkStatus": -1,
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		TempID     string `json:"tempId"`
		SignupHint bool   `json:"signupHint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TempID)
	assert.True(t, resp.SignupHint)
}

func TestDeletePromise_OwnerOnly(t *testing.T) {
	e := newEnv(t)

	// Created by the authed owner.
	rec := e.do(t, http.MethodPost, "/promise", map[string]any{"title": "water plants"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var promise models.Promise
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &promise))

	rec = e.do(t, http.MethodDelete, "/promise/"+promise.ID.String(), nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/promise/"+promise.ID.String(), nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
