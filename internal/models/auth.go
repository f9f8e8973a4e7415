package models

import "time"

// Session is the persisted proof of a completed login
type Session struct {
	Token     string    `json:"token" yaml:"token"`
	UserID    int64     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at" yaml:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// VerificationAttempt binds a phone number to the device token sent with its code request
type VerificationAttempt struct {
	PhoneNumber string
	DeviceToken string
}

// ChallengeResponse is the alternate success shape of a code verification
type ChallengeResponse struct {
	MobileClaim MobileClaim `json:"mobile_claim"`
	Challenge   Challenge   `json:"challenge"`
}

// MobileClaim is the provider's claim on the phone number pending the challenge
type MobileClaim struct {
	MobileNumber string `json:"mobile_number"`
	ClaimToken   string `json:"claim_token"`
	DateExpires  string `json:"date_expires"`
}

// Challenge is a secondary verification step that needs an email address to complete
type Challenge struct {
	ChallengeID string              `json:"challenge_id"`
	FirstName   string              `json:"first_name"`
	Message     string              `json:"message"`
	Properties  []ChallengeProperty `json:"properties"`
}

// ChallengeProperty describes one field the challenge asks for
type ChallengeProperty struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// VerifyResultKind discriminates VerifyResult
type VerifyResultKind string

const (
	VerifyResultSession   VerifyResultKind = "session"
	VerifyResultChallenge VerifyResultKind = "challenge"
)

// VerifyResult is the outcome of a code verification: exactly one of Session or Challenge is set
type VerifyResult struct {
	Kind      VerifyResultKind
	Session   *Session
	Challenge *ChallengeResponse
}

// SessionResult wraps a session as a VerifyResult
func SessionResult(s *Session) *VerifyResult {
	return &VerifyResult{Kind: VerifyResultSession, Session: s}
}

// ChallengeResult wraps a challenge as a VerifyResult
func ChallengeResult(c *ChallengeResponse) *VerifyResult {
	return &VerifyResult{Kind: VerifyResultChallenge, Challenge: c}
}
