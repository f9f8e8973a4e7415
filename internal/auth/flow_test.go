package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/session"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	sendErr      error
	verifyResult *models.VerifyResult
	verifyErr    error
	challengeRes *models.Session
	challengeErr error

	sentPhones    []string
	verifyCalls   [][2]string
	challengeArgs [][2]string
}

func (g *fakeGateway) SendVerificationCode(ctx context.Context, phoneNumber string) error {
	g.sentPhones = append(g.sentPhones, phoneNumber)
	return g.sendErr
}

func (g *fakeGateway) VerifyCode(ctx context.Context, code, phoneNumber string) (*models.VerifyResult, error) {
	g.verifyCalls = append(g.verifyCalls, [2]string{code, phoneNumber})
	return g.verifyResult, g.verifyErr
}

func (g *fakeGateway) CompleteChallenge(ctx context.Context, challengeID, email string) (*models.Session, error) {
	g.challengeArgs = append(g.challengeArgs, [2]string{challengeID, email})
	return g.challengeRes, g.challengeErr
}

func testSession(token string) *models.Session {
	return &models.Session{
		Token:     token,
		UserID:    42,
		IssuedAt:  time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2026, 11, 14, 9, 0, 0, 0, time.UTC),
	}
}

func testChallenge() *models.ChallengeResponse {
	return &models.ChallengeResponse{
		MobileClaim: models.MobileClaim{MobileNumber: "+15551234567", ClaimToken: "claim"},
		Challenge: models.Challenge{
			ChallengeID: "ch_123",
			FirstName:   "Sam",
			Message:     "Confirm your email",
		},
	}
}

func TestFlow_HappyPath(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{verifyResult: models.SessionResult(testSession("tok-1"))}
	store := session.NewMemoryStore()
	flow := NewFlow(gw, store)

	state, err := flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, state)

	require.NoError(t, flow.SendVerificationCode(ctx, "555-123-4567"))
	assert.Equal(t, []string{"+15551234567"}, gw.sentPhones)

	state, err = flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateCodeSent, state)
	assert.False(t, flow.IsLoggedIn(ctx))

	s, err := flow.VerifyCode(ctx, " 123456 ")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, [][2]string{{"123456", "+15551234567"}}, gw.verifyCalls)

	stored, err := flow.CurrentSession(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(testSession("tok-1"), stored); diff != "" {
		t.Errorf("stored session mismatch (-want +got):\n%s", diff)
	}

	token, err := flow.AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.True(t, flow.IsLoggedIn(ctx))

	number, err := flow.UserPhone(ctx)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", number)

	state, err = flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)
}

func TestFlow_SendFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{sendErr: apperror.New(apperror.KindTooManyRequests)}
	store := session.NewMemoryStore()
	flow := NewFlow(gw, store)

	err := flow.SendVerificationCode(ctx, "5551234567")
	assert.ErrorIs(t, err, apperror.ErrTooManyRequests)

	state, err := flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, state)

	_, ok, err := store.Get(ctx, KeyUserPhone)
	require.NoError(t, err)
	assert.False(t, ok, "phone is stored only after a successful send")
}

func TestFlow_VerifyCodeInputErrors(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		code     string
		wantKind apperror.Kind
	}{
		{name: "empty code", phone: "+15551234567", code: "  ", wantKind: apperror.KindInvalidCode},
		{name: "no code requested", phone: "", code: "123456", wantKind: apperror.KindInvalidPhoneNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gw := &fakeGateway{}
			store := session.NewMemoryStore()
			if tt.phone != "" {
				require.NoError(t, store.Set(ctx, KeyUserPhone, tt.phone))
			}
			flow := NewFlow(gw, store)

			_, err := flow.VerifyCode(ctx, tt.code)
			assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			assert.Empty(t, gw.verifyCalls, "no provider call for invalid input")
		})
	}
}

func TestFlow_VerifyErrorPersistsNothing(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{verifyErr: apperror.New(apperror.KindInvalidCode)}
	store := session.NewMemoryStore()
	flow := NewFlow(gw, store)

	_, err := flow.VerifyCodeFor(ctx, "000000", "5551234567")
	assert.ErrorIs(t, err, apperror.ErrInvalidCode)

	_, ok, err := store.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlow_ChallengeScenario(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		verifyResult: models.ChallengeResult(testChallenge()),
		challengeRes: testSession("tok-2"),
	}
	store := session.NewMemoryStore()
	flow := NewFlow(gw, store)

	require.NoError(t, flow.SendVerificationCode(ctx, "15551234567"))

	_, err := flow.VerifyCode(ctx, "123456")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrChallengeRequired)

	challenge, ok := apperror.AsChallenge(err)
	require.True(t, ok)
	assert.Equal(t, "ch_123", challenge.Challenge.ChallengeID)

	state, err := flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateChallengePending, state)

	_, ok, err = store.Get(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, ok, "a challenge persists no session")

	s, err := flow.CompleteChallenge(ctx, " sam@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", s.Token)
	assert.Equal(t, [][2]string{{"ch_123", "sam@example.com"}}, gw.challengeArgs)
	assert.Nil(t, flow.PendingChallenge())

	token, err := flow.AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func TestFlow_CompleteChallengeInputErrors(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{challengeRes: testSession("tok")}
	flow := NewFlow(gw, session.NewMemoryStore())

	_, err := flow.CompleteChallenge(ctx, "sam@example.com")
	assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err), "no pending challenge")

	_, err = flow.CompleteChallengeWith(ctx, "ch_123", "")
	assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))

	assert.Empty(t, gw.challengeArgs)
}

func TestFlow_ChallengeFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		verifyResult: models.ChallengeResult(testChallenge()),
		challengeErr: apperror.New(apperror.KindAuthenticationError),
	}
	flow := NewFlow(gw, session.NewMemoryStore())

	_, err := flow.VerifyCodeFor(ctx, "123456", "+15551234567")
	require.ErrorIs(t, err, apperror.ErrChallengeRequired)

	_, err = flow.CompleteChallenge(ctx, "sam@example.com")
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.NotNil(t, flow.PendingChallenge(), "challenge can be retried")
	assert.False(t, flow.IsLoggedIn(ctx))
}

func TestFlow_Logout(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{verifyResult: models.SessionResult(testSession("tok-1"))}
	store := session.NewMemoryStore()
	flow := NewFlow(gw, store)

	_, err := flow.VerifyCodeFor(ctx, "123456", "5551234567")
	require.NoError(t, err)
	require.True(t, flow.IsLoggedIn(ctx))

	require.NoError(t, flow.Logout(ctx))

	token, err := flow.AuthToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, flow.IsLoggedIn(ctx))

	number, err := flow.UserPhone(ctx)
	require.NoError(t, err)
	assert.Empty(t, number)

	state, err := flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, state)

	// logging out twice is harmless
	require.NoError(t, flow.Logout(ctx))
}

func TestFlow_StoredSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	first := NewFlow(&fakeGateway{verifyResult: models.SessionResult(testSession("tok-1"))}, store)
	_, err := first.VerifyCodeFor(ctx, "123456", "5551234567")
	require.NoError(t, err)

	second := NewFlow(&fakeGateway{}, store)
	state, err := second.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)
}

type brokenStore struct {
	session.Store
}

func (brokenStore) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

func TestFlow_PersistFailureLeavesVerified(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{verifyResult: models.SessionResult(testSession("tok-1"))}
	flow := NewFlow(gw, brokenStore{Store: session.NewMemoryStore()})

	_, err := flow.VerifyCodeFor(ctx, "123456", "5551234567")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	state, err := flow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)
}
