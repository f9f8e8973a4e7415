// Package auth drives the phone number login: send code, verify code, optionally answer an
// email challenge, then persist the session.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/phone"
	"github.com/brizzai/resy-client/internal/session"
	"go.uber.org/zap"
)

// Session store keys
const (
	KeySession   = "resy_auth_token"
	KeyUserPhone = "user_phone"
)

// State of the login flow. Authenticated is derived from the presence of a persisted session.
type State string

const (
	StateUnauthenticated  State = "unauthenticated"
	StateCodeSent         State = "code_sent"
	StateVerified         State = "verified"
	StateChallengePending State = "challenge_pending"
	StateAuthenticated    State = "authenticated"
)

// Gateway is the part of the provider gateway the flow drives
type Gateway interface {
	SendVerificationCode(ctx context.Context, phoneNumber string) error
	VerifyCode(ctx context.Context, code, phoneNumber string) (*models.VerifyResult, error)
	CompleteChallenge(ctx context.Context, challengeID, email string) (*models.Session, error)
}

// Flow is the only writer of the session store
type Flow struct {
	gateway Gateway
	store   session.Store

	mu        sync.Mutex
	state     State
	challenge *models.ChallengeResponse
}

// NewFlow creates a new Flow in the unauthenticated state
func NewFlow(gateway Gateway, store session.Store) *Flow {
	return &Flow{
		gateway: gateway,
		store:   store,
		state:   StateUnauthenticated,
	}
}

// State reports Authenticated whenever a session is persisted, otherwise the in-process step
func (f *Flow) State(ctx context.Context) (State, error) {
	s, err := f.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	if s != nil {
		return StateAuthenticated, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateAuthenticated {
		// the session was removed behind our back
		return StateUnauthenticated, nil
	}
	return f.state, nil
}

// SendVerificationCode canonicalizes the number, requests a code and remembers the number
func (f *Flow) SendVerificationCode(ctx context.Context, rawPhone string) error {
	formatted := phone.Format(rawPhone)

	if err := f.gateway.SendVerificationCode(ctx, formatted); err != nil {
		return err
	}
	if err := f.store.Set(ctx, KeyUserPhone, formatted); err != nil {
		return fmt.Errorf("failed to persist phone number: %w", err)
	}

	f.setState(StateCodeSent, nil)
	return nil
}

// VerifyCode verifies against the phone number stored by SendVerificationCode
func (f *Flow) VerifyCode(ctx context.Context, code string) (*models.Session, error) {
	number, err := f.UserPhone(ctx)
	if err != nil {
		return nil, err
	}
	if number == "" {
		return nil, apperror.New(apperror.KindInvalidPhoneNumber)
	}
	return f.VerifyCodeFor(ctx, code, number)
}

// VerifyCodeFor verifies code for an explicit phone number. A challenge comes back as an
// apperror of kind challengeRequired carrying the challenge; CompleteChallenge continues it.
func (f *Flow) VerifyCodeFor(ctx context.Context, code, rawPhone string) (*models.Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.New(apperror.KindInvalidCode)
	}
	formatted := phone.Format(rawPhone)

	result, err := f.gateway.VerifyCode(ctx, code, formatted)
	if err != nil {
		return nil, err
	}

	switch result.Kind {
	case models.VerifyResultChallenge:
		f.setState(StateChallengePending, result.Challenge)
		logger.Info("verification requires challenge", zap.String("challenge_id", result.Challenge.Challenge.ChallengeID))
		return nil, apperror.ChallengeRequired(result.Challenge)
	case models.VerifyResultSession:
		f.setState(StateVerified, nil)
		if err := f.store.Set(ctx, KeyUserPhone, formatted); err != nil {
			return nil, fmt.Errorf("failed to persist phone number: %w", err)
		}
		if err := f.persistSession(ctx, result.Session); err != nil {
			return nil, err
		}
		return result.Session, nil
	default:
		return nil, apperror.New(apperror.KindInvalidResponse)
	}
}

// CompleteChallenge answers the pending challenge with email
func (f *Flow) CompleteChallenge(ctx context.Context, email string) (*models.Session, error) {
	pending := f.PendingChallenge()
	if pending == nil {
		return nil, apperror.New(apperror.KindInvalidRequest)
	}
	return f.CompleteChallengeWith(ctx, pending.Challenge.ChallengeID, email)
}

// CompleteChallengeWith answers a challenge by id, for callers that kept it themselves
func (f *Flow) CompleteChallengeWith(ctx context.Context, challengeID, email string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if challengeID == "" || email == "" {
		return nil, apperror.New(apperror.KindInvalidRequest)
	}

	s, err := f.gateway.CompleteChallenge(ctx, challengeID, email)
	if err != nil {
		return nil, err
	}

	f.setState(StateVerified, nil)
	if err := f.persistSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Logout forgets the session and the phone number. No provider call is made.
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.store.Delete(ctx, KeySession, KeyUserPhone); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	f.setState(StateUnauthenticated, nil)
	logger.Info("logged out")
	return nil
}

// PendingChallenge returns the challenge awaiting an email, if any
func (f *Flow) PendingChallenge() *models.ChallengeResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenge
}

// CurrentSession returns the persisted session, or nil when logged out
func (f *Flow) CurrentSession(ctx context.Context) (*models.Session, error) {
	raw, ok, err := f.store.Get(ctx, KeySession)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode stored session: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

// AuthToken returns the persisted session token, or "" when logged out
func (f *Flow) AuthToken(ctx context.Context) (string, error) {
	s, err := f.CurrentSession(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

func (f *Flow) IsLoggedIn(ctx context.Context) bool {
	token, err := f.AuthToken(ctx)
	return err == nil && token != ""
}

// UserPhone returns the canonical phone number of the last code request
func (f *Flow) UserPhone(ctx context.Context) (string, error) {
	v, _, err := f.store.Get(ctx, KeyUserPhone)
	if err != nil {
		return "", fmt.Errorf("failed to read phone number: %w", err)
	}
	return v, nil
}

func (f *Flow) persistSession(ctx context.Context, s *models.Session) error {
	if s == nil || s.Token == "" {
		return apperror.New(apperror.KindInvalidResponse)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := f.store.Set(ctx, KeySession, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	f.setState(StateAuthenticated, nil)
	logger.Info("session persisted", zap.Int64("user_id", s.UserID), logger.Redact("token", s.Token))
	return nil
}

func (f *Flow) setState(state State, challenge *models.ChallengeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.challenge = challenge
}
