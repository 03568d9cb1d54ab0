package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinky/internal/platform/middleware"
	"pinky/internal/point/handler"
	"pinky/internal/point/service"
	ledgerstore "pinky/internal/point/store/ledger"
	policystore "pinky/internal/point/store/policy"
	usermodels "pinky/internal/user/models"
	userstore "pinky/internal/user/store"
	id "pinky/pkg/domain"
	"pinky/pkg/platform/secrets"
	"pinky/pkg/testutil"
)

const adminToken = "test-admin-token"

type env struct {
	router *chi.Mux
	userID id.UserID
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := userstore.NewMemory()
	policies := policystore.NewMemory()
	svc, err := service.New(policies, ledgerstore.NewMemory(users, policies), users)
	require.NoError(t, err)

	user := &usermodels.User{
		ID:        id.NewUserID(),
		Nickname:  "tester",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, users.Create(context.Background(), user))

	hash, err := secrets.Hash(adminToken)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	handler.New(svc, testutil.Logger(), hash).Register(router)

	return &env{router: router, userID: user.ID}
}

func (e *env) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) createPolicy(t *testing.T, name string, delta int64) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/point/policy", map[string]any{
		"pointName":   name,
		"updatePoint": delta,
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func TestPointRoutes_RequireAdminToken(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/point/policy", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/point/policy", nil, "wrong-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/point/policy", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPolicyLifecycle(t *testing.T) {
	e := newEnv(t)
	policyID := e.createPolicy(t, "share-reward", 50)

	rec := e.do(t, http.MethodGet, "/point/policy/"+policyID, nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, "/point/policy/"+policyID, map[string]any{
		"updatePoint": 75,
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Name  string `json:"name"`
		Delta int64  `json:"delta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "share-reward", updated.Name)
	assert.Equal(t, int64(75), updated.Delta)

	rec = e.do(t, http.MethodDelete, "/point/policy/"+policyID, nil, adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPay_ExactlyOneActivityReference(t *testing.T) {
	e := newEnv(t)
	policyID := e.createPolicy(t, "reward", 10)

	base := map[string]any{
		"userId":        e.userID.String(),
		"pointPolicyId": policyID,
	}

	t.Run("none", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/point/pay", base, adminToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("multiple", func(t *testing.T) {
		body := map[string]any{
			"userId":        e.userID.String(),
			"pointPolicyId": policyID,
			"shareId":       uuid.NewString(),
			"workId":        "task-1",
		}
		rec := e.do(t, http.MethodPost, "/point/pay", body, adminToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exactly one", func(t *testing.T) {
		body := map[string]any{
			"userId":        e.userID.String(),
			"pointPolicyId": policyID,
			"attendanceId":  "day-1",
		}
		rec := e.do(t, http.MethodPost, "/point/pay", body, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			EntryID string `json:"entryId"`
			Delta   int64  `json:"delta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.EntryID)
		assert.Equal(t, int64(10), resp.Delta)
	})

	t.Run("retry conflicts", func(t *testing.T) {
		body := map[string]any{
			"userId":        e.userID.String(),
			"pointPolicyId": policyID,
			"attendanceId":  "day-1",
		}
		rec := e.do(t, http.MethodPost, "/point/pay", body, adminToken)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestPay_InsufficientBalance(t *testing.T) {
	e := newEnv(t)
	spendID := e.createPolicy(t, "spend", -100)

	rec := e.do(t, http.MethodPost, "/point/pay", map[string]any{
		"userId":        e.userID.String(),
		"pointPolicyId": spendID,
		"farmId":        "plot-3",
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerByUser(t *testing.T) {
	e := newEnv(t)
	policyID := e.createPolicy(t, "reward", 10)

	rec := e.do(t, http.MethodPost, "/point/pay", map[string]any{
		"userId":        e.userID.String(),
		"pointPolicyId": policyID,
		"workId":        "task-9",
	}, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/point/ledger/"+e.userID.String(), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
}
