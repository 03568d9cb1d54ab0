package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinky/internal/promise/models"
	"pinky/internal/promise/service"
	evaluationstore "pinky/internal/promise/store/evaluation"
	gueststore "pinky/internal/promise/store/guest"
	promisestore "pinky/internal/promise/store/promise"
	sharestore "pinky/internal/promise/store/share"
	usermodels "pinky/internal/user/models"
	userstore "pinky/internal/user/store"
	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/audit/publisher"
	"pinky/pkg/requestcontext"
)

type fixture struct {
	svc    *service.Service
	users  *userstore.Memory
	audit  *publisher.MemoryPublisher
	owner  id.UserID
	friend id.UserID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := userstore.NewMemory()
	shares := sharestore.NewMemory()
	auditor := publisher.NewMemory()

	svc, err := service.New(
		promisestore.NewMemory(),
		shares,
		gueststore.NewMemory(),
		evaluationstore.NewMemory(shares),
		users,
		service.WithAuditPublisher(auditor),
	)
	require.NoError(t, err)

	f := &fixture{svc: svc, users: users, audit: auditor}
	f.owner = f.addUser(t, "owner")
	f.friend = f.addUser(t, "friend")
	return f
}

func (f *fixture) addUser(t *testing.T, nickname string) id.UserID {
	t.Helper()
	user := &usermodels.User{
		ID:        id.NewUserID(),
		Nickname:  nickname,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) newShare(t *testing.T, promDate *time.Time) *models.Share {
	t.Helper()
	ctx := context.Background()
	promise, err := f.svc.CreatePromise(ctx, f.owner, models.CreatePromiseRequest{
		Title:    "run every morning",
		PromDate: promDate,
	})
	require.NoError(t, err)
	share, err := f.svc.IssueShare(ctx, promise.ID, f.owner)
	require.NoError(t, err)
	return share
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSubmitEvaluation_RegisteredHappyPath(t *testing.T) {
	f := newFixture(t)
	share := f.newShare(t, nil)

	result, err := f.svc.SubmitEvaluation(context.Background(),
		models.ShareRefByID(share.ID),
		models.Registered(f.friend),
		models.Outcome{CheckStatus: models.CheckKeptWell, Score: 5, Feedback: "nailed it"},
	)
	require.NoError(t, err)

	assert.Equal(t, models.CheckKeptWell, result.Share.CheckStatus)
	assert.Equal(t, 5, result.Share.Score)
	assert.Equal(t, "nailed it", result.Share.Feedback)
	assert.False(t, result.SignupHint)
	require.NotNil(t, result.Evaluation.UserID)
	assert.Equal(t, f.friend, *result.Evaluation.UserID)

	// The stored share carries the verdict.
	stored, err := f.svc.ResolveShare(context.Background(), models.ShareRefByToken(share.Token))
	require.NoError(t, err)
	assert.Equal(t, models.CheckKeptWell, stored.CheckStatus)

	events := f.audit.ByAction(audit.ActionEvaluationRecorded)
	require.Len(t, events, 1)
	assert.Equal(t, share.ID.String(), events[0].Subject)
}

func TestSubmitEvaluation_SecondVerdictConflicts(t *testing.T) {
	f := newFixture(t)
	share := f.newShare(t, nil)
	ctx := context.Background()

	_, err := f.svc.SubmitEvaluation(ctx,
		models.ShareRefByID(share.ID),
		models.Registered(f.friend),
		models.Outcome{CheckStatus: models.CheckKept},
	)
	require.NoError(t, err)

	_, err = f.svc.SubmitEvaluation(ctx,
		models.ShareRefByID(share.ID),
		models.Registered(f.owner),
		models.Outcome{CheckStatus: models.CheckBroken},
	)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// The first verdict stands.
	stored, err := f.svc.ResolveShare(ctx, models.ShareRefByID(share.ID))
	require.NoError(t, err)
	assert.Equal(t, models.CheckKept, stored.CheckStatus)
}

func TestSubmitEvaluation_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	share := f.newShare(t, nil)

	const goroutines = 20
	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitEvaluation(context.Background(),
				models.ShareRefByID(share.ID),
				models.Registered(f.friend),
				models.Outcome{CheckStatus: models.CheckKept},
			)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one submission should land")
	assert.Equal(t, int32(goroutines-1), conflicts.Load())
}

func TestSubmitEvaluation_WindowBoundary(t *testing.T) {
	f := newFixture(t)
	promDate := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	share := f.newShare(t, timePtr(promDate))

	t.Run("inside the window", func(t *testing.T) {
		ctx := requestcontext.WithTime(context.Background(), promDate.Add(23*time.Hour))
		_, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(share.ID),
			models.Registered(f.friend),
			models.Outcome{CheckStatus: models.CheckKept},
		)
		require.NoError(t, err)
	})

	t.Run("after the window", func(t *testing.T) {
		late := f.newShare(t, timePtr(promDate))
		ctx := requestcontext.WithTime(context.Background(), promDate.Add(25*time.Hour))
		_, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(late.ID),
			models.Registered(f.friend),
			models.Outcome{CheckStatus: models.CheckKept},
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeWindowExpired))
	})
}

func TestSubmitEvaluation_NoDeadlineWithoutPromDate(t *testing.T) {
	f := newFixture(t)
	share := f.newShare(t, nil)

	// Far in the future; an unscheduled promise never expires.
	ctx := requestcontext.WithTime(context.Background(), time.Now().Add(365*24*time.Hour))
	_, err := f.svc.SubmitEvaluation(ctx,
		models.ShareRefByID(share.ID),
		models.Registered(f.friend),
		models.Outcome{CheckStatus: models.CheckBroken},
	)
	require.NoError(t, err)
}

func TestSubmitEvaluation_DefaultsKeptForOmittedFields(t *testing.T) {
	f := newFixture(t)
	share := f.newShare(t, nil)

	result, err := f.svc.SubmitEvaluation(context.Background(),
		models.ShareRefByID(share.ID),
		models.Registered(f.friend),
		models.Outcome{CheckStatus: models.CheckBroken, Score: 9, Feedback: "   "},
	)
	require.NoError(t, err)

	assert.Equal(t, models.CheckBroken, result.Share.CheckStatus)
	assert.Equal(t, models.DefaultScore, result.Share.Score, "out-of-range score keeps the default")
	assert.Equal(t, models.DefaultFeedback, result.Share.Feedback, "blank feedback keeps the default")
}

func TestSubmitEvaluation_GuestMinting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("mints a named guest", func(t *testing.T) {
		share := f.newShare(t, nil)
		result, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(share.ID),
			models.NewGuest("Mina"),
			models.Outcome{CheckStatus: models.CheckKept},
		)
		require.NoError(t, err)
		assert.True(t, result.SignupHint)
		require.NotNil(t, result.Evaluation.GuestID)
	})

	t.Run("defaults a blank name", func(t *testing.T) {
		share := f.newShare(t, nil)
		result, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(share.ID),
			models.NewGuest("   "),
			models.Outcome{CheckStatus: models.CheckKept},
		)
		require.NoError(t, err)
		require.NotNil(t, result.Evaluation.GuestID)
	})

	t.Run("reuses an existing guest", func(t *testing.T) {
		first := f.newShare(t, nil)
		minted, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(first.ID),
			models.NewGuest("Rei"),
			models.Outcome{CheckStatus: models.CheckKept},
		)
		require.NoError(t, err)

		second := f.newShare(t, nil)
		reused, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(second.ID),
			models.Guest(*minted.Evaluation.GuestID),
			models.Outcome{CheckStatus: models.CheckKeptWell},
		)
		require.NoError(t, err)
		assert.Equal(t, *minted.Evaluation.GuestID, *reused.Evaluation.GuestID)
	})

	t.Run("rejects an unknown guest", func(t *testing.T) {
		share := f.newShare(t, nil)
		_, err := f.svc.SubmitEvaluation(ctx,
			models.ShareRefByID(share.ID),
			models.Guest(id.NewGuestID()),
			models.Outcome{CheckStatus: models.CheckKept},
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestSubmitEvaluation_UnknownRegisteredEvaluator(t *testing.T) {
	f := newFixture(t)
	share := f.newShare(t, nil)

	_, err := f.svc.SubmitEvaluation(context.Background(),
		models.ShareRefByID(share.ID),
		models.Registered(id.NewUserID()),
		models.Outcome{CheckStatus: models.CheckKept},
	)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
