package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinky/internal/point/models"
	"pinky/internal/point/service"
	ledgerstore "pinky/internal/point/store/ledger"
	policystore "pinky/internal/point/store/policy"
	usermodels "pinky/internal/user/models"
	userstore "pinky/internal/user/store"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/audit/publisher"
)

type fixture struct {
	svc   *service.Service
	users *userstore.Memory
	audit *publisher.MemoryPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := userstore.NewMemory()
	policies := policystore.NewMemory()
	auditor := publisher.NewMemory()

	svc, err := service.New(policies, ledgerstore.NewMemory(users, policies), users,
		service.WithAuditPublisher(auditor),
	)
	require.NoError(t, err)
	return &fixture{svc: svc, users: users, audit: auditor}
}

func (f *fixture) addUser(t *testing.T, balance int64) id.UserID {
	t.Helper()
	user := &usermodels.User{
		ID:        id.NewUserID(),
		Nickname:  "tester",
		Balance:   balance,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) addPolicy(t *testing.T, name string, delta int64) id.PolicyID {
	t.Helper()
	policy, err := f.svc.CreatePolicy(context.Background(), models.CreatePolicyRequest{
		PointName:   name,
		UpdatePoint: &delta,
	})
	require.NoError(t, err)
	return policy.ID
}

func shareActivity() models.ActivityRef {
	return models.ActivityRef{Type: models.ActivityShare, ID: uuid.NewString()}
}

func TestDisburse_CreditsBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.addUser(t, 0)
	policyID := f.addPolicy(t, "share-reward", 50)

	entry, err := f.svc.Disburse(ctx, userID, policyID, shareActivity(), "evaluated a share")
	require.NoError(t, err)
	assert.Equal(t, int64(50), entry.Delta)

	balance, err := f.users.AdjustBalance(ctx, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	events := f.audit.ByAction(audit.ActionPointsDisbursed)
	require.Len(t, events, 1)
	assert.Equal(t, userID.String(), events[0].ActorID)
}

func TestDisburse_SameActivityPaysOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.addUser(t, 0)
	policyID := f.addPolicy(t, "attendance", 10)
	activity := models.ActivityRef{Type: models.ActivityAttendance, ID: "day-42"}

	_, err := f.svc.Disburse(ctx, userID, policyID, activity, "")
	require.NoError(t, err)

	_, err = f.svc.Disburse(ctx, userID, policyID, activity, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// Balance moved exactly once.
	balance, err := f.users.AdjustBalance(ctx, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	require.Len(t, f.audit.ByAction(audit.ActionDisbursementRefused), 1)
}

func TestDisburse_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	userID := f.addUser(t, 0)
	policyID := f.addPolicy(t, "work-bonus", 25)
	activity := models.ActivityRef{Type: models.ActivityWork, ID: "task-7"}

	const goroutines = 20
	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Disburse(context.Background(), userID, policyID, activity, "")
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one disbursement should land")
	assert.Equal(t, int32(goroutines-1), conflicts.Load())

	balance, err := f.users.AdjustBalance(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
}

func TestDisburse_BalanceFloor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.addUser(t, 30)
	spendID := f.addPolicy(t, "farm-seed", -50)

	_, err := f.svc.Disburse(ctx, userID, spendID, models.ActivityRef{Type: models.ActivityFarm, ID: "plot-1"}, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

	// Nothing written: the same activity can be retried once funded.
	balance, err := f.users.AdjustBalance(ctx, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance)

	topUpID := f.addPolicy(t, "top-up", 100)
	_, err = f.svc.Disburse(ctx, userID, topUpID, shareActivity(), "")
	require.NoError(t, err)

	_, err = f.svc.Disburse(ctx, userID, spendID, models.ActivityRef{Type: models.ActivityFarm, ID: "plot-1"}, "")
	require.NoError(t, err)
}

func TestDisburse_DeltaFrozenAtDisbursement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.addUser(t, 0)
	policyID := f.addPolicy(t, "streak", 10)

	first, err := f.svc.Disburse(ctx, userID, policyID, shareActivity(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.Delta)

	newDelta := int64(99)
	_, err = f.svc.UpdatePolicy(ctx, policyID, models.UpdatePolicyRequest{UpdatePoint: &newDelta})
	require.NoError(t, err)

	second, err := f.svc.Disburse(ctx, userID, policyID, shareActivity(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(99), second.Delta)

	entries, err := f.svc.LedgerForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(10), entries[0].Delta, "history keeps the delta it was written with")
}

func TestDisburse_UnknownUserAndPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.addUser(t, 0)
	policyID := f.addPolicy(t, "reward", 5)

	_, err := f.svc.Disburse(ctx, id.NewUserID(), policyID, shareActivity(), "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = f.svc.Disburse(ctx, userID, id.NewPolicyID(), shareActivity(), "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDisburse_RejectsMalformedActivity(t *testing.T) {
	f := newFixture(t)
	userID := f.addUser(t, 0)
	policyID := f.addPolicy(t, "reward", 5)

	_, err := f.svc.Disburse(context.Background(), userID, policyID,
		models.ActivityRef{Type: "unknown", ID: "x"}, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
