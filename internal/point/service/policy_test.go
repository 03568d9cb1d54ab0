package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinky/internal/point/models"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func TestCreatePolicy_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePolicy(ctx, models.CreatePolicyRequest{PointName: "  "})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = f.svc.CreatePolicy(ctx, models.CreatePolicyRequest{PointName: "reward"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCreatePolicy_DuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePolicy(ctx, models.CreatePolicyRequest{PointName: "Share Reward", UpdatePoint: int64Ptr(10)})
	require.NoError(t, err)

	_, err = f.svc.CreatePolicy(ctx, models.CreatePolicyRequest{PointName: "share reward", UpdatePoint: int64Ptr(20)})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict), "names are unique case-insensitively")
}

func TestUpdatePolicy_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	policyID := f.addPolicy(t, "attendance", 5)

	updated, err := f.svc.UpdatePolicy(ctx, policyID, models.UpdatePolicyRequest{UpdatePoint: int64Ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, "attendance", updated.Name, "unset fields stay unchanged")
	assert.Equal(t, int64(8), updated.Delta)

	updated, err = f.svc.UpdatePolicy(ctx, policyID, models.UpdatePolicyRequest{PointName: strPtr("daily-attendance")})
	require.NoError(t, err)
	assert.Equal(t, "daily-attendance", updated.Name)
	assert.Equal(t, int64(8), updated.Delta)

	_, err = f.svc.UpdatePolicy(ctx, policyID, models.UpdatePolicyRequest{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestUpdatePolicy_RenameCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPolicy(t, "first", 1)
	secondID := f.addPolicy(t, "second", 2)

	_, err := f.svc.UpdatePolicy(ctx, secondID, models.UpdatePolicyRequest{PointName: strPtr("first")})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestDeletePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("deletes an unused policy", func(t *testing.T) {
		policyID := f.addPolicy(t, "unused", 5)
		require.NoError(t, f.svc.DeletePolicy(ctx, policyID))

		_, err := f.svc.GetPolicy(ctx, policyID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("refuses while ledger entries reference it", func(t *testing.T) {
		policyID := f.addPolicy(t, "referenced", 5)
		userID := f.addUser(t, 0)
		_, err := f.svc.Disburse(ctx, userID, policyID, shareActivity(), "")
		require.NoError(t, err)

		err = f.svc.DeletePolicy(ctx, policyID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("missing policy", func(t *testing.T) {
		err := f.svc.DeletePolicy(ctx, id.NewPolicyID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestListPolicies_SortedByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPolicy(t, "bravo", 1)
	f.addPolicy(t, "alpha", 2)

	policies, err := f.svc.ListPolicies(ctx)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "alpha", policies[0].Name)
	assert.Equal(t, "bravo", policies[1].Name)
}
