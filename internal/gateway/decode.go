package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brizzai/resy-client/internal/models"
)

var (
	errMissingToken        = errors.New("response has no token")
	errMissingReservations = errors.New("response has no reservations")
)

// authResponse is the session shape returned by the auth endpoints
type authResponse struct {
	Token       string    `json:"token"`
	ID          flexInt   `json:"id"`
	DateUpdated flexTime  `json:"date_updated"`
	ExpiresAt   *flexTime `json:"expires_at"`
}

func decodeSession(body []byte, now time.Time) (*models.Session, error) {
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if resp.Token == "" {
		return nil, errMissingToken
	}

	expiresAt := resp.DateUpdated.Time
	if resp.ExpiresAt != nil {
		expiresAt = resp.ExpiresAt.Time
	}
	return &models.Session{
		Token:     resp.Token,
		UserID:    int64(resp.ID),
		IssuedAt:  now.UTC(),
		ExpiresAt: expiresAt,
	}, nil
}

// decodeVerifyResult discriminates on the top-level "challenge" key. A body carrying that key is
// a challenge even when it also has a token.
func decodeVerifyResult(body []byte, now time.Time) (*models.VerifyResult, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	if raw, ok := keys["challenge"]; ok {
		if !isObject(raw) {
			return nil, fmt.Errorf("challenge is not an object: %s", raw)
		}
		var challenge models.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			return nil, fmt.Errorf("failed to decode challenge: %w", err)
		}
		return models.ChallengeResult(&challenge), nil
	}

	session, err := decodeSession(body, now)
	if err != nil {
		return nil, err
	}
	return models.SessionResult(session), nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// decodeReservations accepts a bare array of records or an object with a "reservations" array or null.
// Records may be flat (proxy shape) or nest the venue (provider shape). Status is passed through
// unmapped.
func decodeReservations(body []byte) ([]models.Reservation, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errMissingReservations
	}

	var records []rawReservation
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode reservations: %w", err)
		}
	} else {
		var envelope struct {
			Reservations json.RawMessage `json:"reservations"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode reservations: %w", err)
		}
		if envelope.Reservations == nil {
			return nil, errMissingReservations
		}
		// an explicit null is an empty result set
		if err := json.Unmarshal(envelope.Reservations, &records); err != nil {
			return nil, fmt.Errorf("failed to decode reservations: %w", err)
		}
	}

	out := make([]models.Reservation, 0, len(records))
	for _, r := range records {
		out = append(out, r.normalize())
	}
	return out, nil
}

type rawVenue struct {
	ID   flexInt `json:"id"`
	Name string  `json:"name"`
}

type rawReservation struct {
	ID             flexString `json:"id"`
	ReservationID  flexString `json:"reservation_id"`
	ResyToken      flexString `json:"resy_token"`
	VenueIDCamel   flexInt    `json:"venueId"`
	VenueIDSnake   flexInt    `json:"venue_id"`
	Venue          *rawVenue  `json:"venue"`
	VenueNameCamel string     `json:"venueName"`
	VenueNameSnake string     `json:"venue_name"`
	Date           string     `json:"date"`
	Day            string     `json:"day"`
	Time           string     `json:"time"`
	TimeSlot       string     `json:"time_slot"`
	PartySizeCamel flexInt    `json:"partySize"`
	PartySizeSnake flexInt    `json:"party_size"`
	NumSeats       flexInt    `json:"num_seats"`
	Status         rawStatus  `json:"status"`
	CreatedAtCamel flexTime   `json:"createdAt"`
	CreatedAtSnake flexTime   `json:"created_at"`
}

func (r rawReservation) normalize() models.Reservation {
	res := models.Reservation{
		ID:        firstNonEmpty(string(r.ID), string(r.ReservationID), string(r.ResyToken)),
		VenueID:   int64(firstNonZero(r.VenueIDCamel, r.VenueIDSnake)),
		VenueName: firstNonEmpty(r.VenueNameCamel, r.VenueNameSnake),
		PartySize: int(firstNonZero(r.PartySizeCamel, r.PartySizeSnake, r.NumSeats)),
		Status:    models.ReservationStatus(r.Status),
		CreatedAt: r.CreatedAtCamel.Time,
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = r.CreatedAtSnake.Time
	}
	if r.Venue != nil {
		if res.VenueID == 0 {
			res.VenueID = int64(r.Venue.ID)
		}
		if res.VenueName == "" {
			res.VenueName = r.Venue.Name
		}
	}

	res.Date, res.Time = splitDateTime(firstNonEmpty(r.Date, r.Day), firstNonEmpty(r.Time, r.TimeSlot))
	return res
}

// splitDateTime normalizes to YYYY-MM-DD and HH:MM, pulling the time out of a full timestamp
func splitDateTime(date, clock string) (string, string) {
	if len(date) > len(models.DateLayout) {
		if ts, err := time.Parse(time.RFC3339, date); err == nil {
			date = ts.Format(models.DateLayout)
			if clock == "" {
				clock = ts.Format("15:04")
			}
		} else if ts, err := time.Parse("2006-01-02 15:04:05", date); err == nil {
			date = ts.Format(models.DateLayout)
			if clock == "" {
				clock = ts.Format("15:04")
			}
		}
	}
	if t, err := time.Parse("15:04:05", clock); err == nil {
		clock = t.Format("15:04")
	}
	return date, clock
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...flexInt) flexInt {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// flexString accepts a JSON string or number
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

// flexInt accepts a JSON number or numeric string
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" {
			return nil
		}
		v, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return fmt.Errorf("expected numeric string, got %q", str)
		}
		*n = flexInt(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("expected number, got %s", data)
	}
	*n = flexInt(f)
	return nil
}

// flexTime accepts a unix timestamp (seconds) or an RFC 3339 string
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", models.DateLayout} {
			if parsed, err := time.Parse(layout, str); err == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
		if secs, err := strconv.ParseInt(str, 10, 64); err == nil {
			t.Time = time.Unix(secs, 0).UTC()
			return nil
		}
		return fmt.Errorf("unrecognized timestamp %q", str)
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("expected timestamp, got %s", data)
	}
	t.Time = time.Unix(int64(secs), 0).UTC()
	return nil
}

// rawStatus accepts "confirmed" or {"name": "confirmed"}
type rawStatus string

func (s *rawStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = rawStatus(strings.TrimSpace(str))
		return nil
	}
	var obj struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected status string or object, got %s", data)
	}
	*s = rawStatus(strings.TrimSpace(firstNonEmpty(obj.Name, obj.Status)))
	return nil
}
