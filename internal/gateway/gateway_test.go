package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/requester"
	"github.com/brizzai/resy-client/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const challengeBody = `{
	"mobile_claim": {"mobile_number": "+15551234567", "claim_token": "claim", "date_expires": "2026-10-14T12:00:00Z"},
	"challenge": {
		"challenge_id": "ch_123",
		"first_name": "Sam",
		"message": "Confirm your email",
		"properties": [{"name": "em_address", "type": "email", "message": "Email"}]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	providerCfg := &config.ProviderConfig{BaseURL: server.URL, PageSize: 2}
	client := NewClient(ClientParams{
		Requester: requester.NewHTTPRequester(requester.HTTPRequesterParams{
			ProviderConfig: providerCfg,
			AuthManager:    requester.NewAPIKeyAuthManager(secrets.NewStaticStore("api-key", "service-token")),
		}),
		ProviderConfig: providerCfg,
	})
	client.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }
	return client, server
}

func TestSendVerificationCode(t *testing.T) {
	var (
		mu     sync.Mutex
		tokens []string
	)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/auth/mobile", r.URL.Path)
		assert.Equal(t, `ResyAPI api_key="api-key"`, r.Header.Get("Authorization"))
		assert.Equal(t, "+15551234567", r.PostForm.Get("mobile_number"))
		assert.Equal(t, "sms", r.PostForm.Get("method"))
		assert.Equal(t, "3", r.PostForm.Get("device_type_id"))
		mu.Lock()
		tokens = append(tokens, r.PostForm.Get("device_token"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.SendVerificationCode(context.Background(), "555-123-4567"))
	require.NoError(t, client.SendVerificationCode(context.Background(), "555-123-4567"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, tokens, 2)
	assert.NotEmpty(t, tokens[0])
	assert.NotEqual(t, tokens[0], tokens[1], "each send uses a fresh device token")
	assert.Equal(t, tokens[1], client.DeviceToken())
}

func TestSendVerificationCode_InvalidPhoneSkipsNetwork(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	err := client.SendVerificationCode(context.Background(), "555-1234")
	assert.ErrorIs(t, err, apperror.ErrInvalidPhoneNumber)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Empty(t, client.DeviceToken())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   apperror.Kind
	}{
		{status: http.StatusBadRequest, body: `{"data":{"mobile_number":"Invalid number"}}`, want: apperror.KindInvalidPhoneNumber},
		{status: http.StatusUnauthorized, want: apperror.KindAuthenticationError},
		{status: 419, want: apperror.KindAuthenticationError},
		{status: http.StatusTooManyRequests, want: apperror.KindTooManyRequests},
		{status: http.StatusInternalServerError, want: apperror.KindServerError},
		{status: http.StatusServiceUnavailable, want: apperror.KindServerError},
		{status: http.StatusNotFound, want: apperror.KindUnknown},
		{status: http.StatusAccepted, want: apperror.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.SendVerificationCode(context.Background(), "+15551234567")
			assert.Equal(t, tt.want, apperror.KindOf(err))
		})
	}
}

func TestSendVerificationCode_NetworkError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := client.SendVerificationCode(context.Background(), "+15551234567")
	assert.ErrorIs(t, err, apperror.ErrNetwork)
}

func TestVerifyCode(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind models.VerifyResultKind
		wantErr  apperror.Kind
	}{
		{
			name:     "session",
			status:   http.StatusOK,
			body:     `{"token":"tok_abc","id":42,"date_updated":1760432400}`,
			wantKind: models.VerifyResultSession,
		},
		{
			name:     "challenge",
			status:   http.StatusOK,
			body:     challengeBody,
			wantKind: models.VerifyResultChallenge,
		},
		{
			name:     "challenge wins over token",
			status:   http.StatusOK,
			body:     `{"token":"tok_abc","id":42,"challenge":{"challenge_id":"ch_9"},"mobile_claim":{}}`,
			wantKind: models.VerifyResultChallenge,
		},
		{
			name:    "null challenge is not a session",
			status:  http.StatusOK,
			body:    `{"token":"tok_abc","challenge":null}`,
			wantErr: apperror.KindInvalidResponse,
		},
		{
			name:    "neither shape",
			status:  http.StatusOK,
			body:    `{"hello":"world"}`,
			wantErr: apperror.KindInvalidResponse,
		},
		{
			name:    "not json",
			status:  http.StatusCreated,
			body:    `<html>`,
			wantErr: apperror.KindInvalidResponse,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			wantErr: apperror.KindAuthenticationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "1234", r.PostForm.Get("code"))
				assert.Equal(t, "+15551234567", r.PostForm.Get("mobile_number"))
				assert.Equal(t, "device-1", r.PostForm.Get("device_token"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			client.deviceToken = "device-1"

			result, err := client.VerifyCode(context.Background(), "1234", "+15551234567")
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, apperror.KindOf(err))
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, result.Kind)
		})
	}
}

func TestVerifyCode_DecodesPayloads(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(challengeBody))
	})

	result, err := client.VerifyCode(context.Background(), "1234", "+15551234567")
	require.NoError(t, err)
	require.NotNil(t, result.Challenge)
	assert.Nil(t, result.Session)
	assert.Equal(t, "ch_123", result.Challenge.Challenge.ChallengeID)
	assert.Equal(t, "Sam", result.Challenge.Challenge.FirstName)
	assert.Equal(t, "claim", result.Challenge.MobileClaim.ClaimToken)
	require.Len(t, result.Challenge.Challenge.Properties, 1)
	assert.Equal(t, "email", result.Challenge.Challenge.Properties[0].Type)
}

func TestCompleteChallenge(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/auth/challenge", r.URL.Path)
		assert.Equal(t, "ch_123", r.PostForm.Get("challenge_id"))
		assert.Equal(t, "user@example.com", r.PostForm.Get("em_address"))
		assert.Equal(t, "device-1", r.PostForm.Get("device_token"))
		_, _ = w.Write([]byte(`{"token":"tok_final","id":"42"}`))
	})
	client.deviceToken = "device-1"

	session, err := client.CompleteChallenge(context.Background(), "ch_123", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "tok_final", session.Token)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, client.now().UTC(), session.IssuedAt)
}

func TestCompleteChallenge_InvalidResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := client.CompleteChallenge(context.Background(), "ch_123", "user@example.com")
	assert.ErrorIs(t, err, apperror.ErrInvalidResponse)
}

func TestFetchReservations_PaginatesAndFilters(t *testing.T) {
	pages := map[string]string{
		"0": `{"reservations":[{"id":"r1","date":"2026-10-20"},{"id":"r2","date":"2026-10-21"}]}`,
		"2": `{"reservations":[{"id":"r3","date":"2026-10-22"}]}`,
	}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/reservations", r.URL.Path)
		assert.Equal(t, "user-token", r.Header.Get(requester.AuthTokenHeader))
		assert.Equal(t, "upcoming", r.URL.Query().Get("type"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(pages[r.URL.Query().Get("offset")]))
	})

	resp, err := client.FetchReservations(context.Background(), "user-token", models.KindUpcoming)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 3)
	assert.Equal(t, []string{"r1", "r2", "r3"}, []string{resp.Reservations[0].ID, resp.Reservations[1].ID, resp.Reservations[2].ID})
}

func TestFetchReservations_OffsetIgnored(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"reservations":[{"id":"a","date":"2026-10-20"},{"id":"b","date":"2026-10-21"}]}`))
	})

	resp, err := client.FetchReservations(context.Background(), "user-token", models.KindAll)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 2)
	assert.Equal(t, []string{"a", "b"}, []string{resp.Reservations[0].ID, resp.Reservations[1].ID})
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchReservations_DropsRepeatedIDs(t *testing.T) {
	pages := map[string]string{
		"0": `{"reservations":[{"id":"r1"},{"id":"r2"}]}`,
		"2": `{"reservations":[{"id":"r2"},{"id":"r3"}]}`,
		"4": `{"reservations":[]}`,
	}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pages[r.URL.Query().Get("offset")]))
	})

	resp, err := client.FetchReservations(context.Background(), "user-token", models.KindAll)
	require.NoError(t, err)
	got := make([]string, 0, len(resp.Reservations))
	for _, r := range resp.Reservations {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"r1", "r2", "r3"}, got)
}

func TestFetchReservations_StopsAtPageLimit(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		offset := r.URL.Query().Get("offset")
		_, _ = w.Write([]byte(`[{"id":"x` + offset + `"},{"id":"y` + offset + `"}]`))
	})

	resp, err := client.FetchReservations(context.Background(), "user-token", models.KindAll)
	require.NoError(t, err)
	assert.Equal(t, int32(maxPages), atomic.LoadInt32(&calls))
	assert.Len(t, resp.Reservations, maxPages*2)
}

func TestFetchReservations_AllOmitsType(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["type"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`[]`))
	})

	resp, err := client.FetchReservations(context.Background(), "user-token", models.KindAll)
	require.NoError(t, err)
	assert.Empty(t, resp.Reservations)
}

func TestFetchReservations_MissingToken(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.FetchReservations(context.Background(), "", models.KindAll)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFetchReservations_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperror.Kind
	}{
		{name: "expired token", status: http.StatusUnauthorized, want: apperror.KindAuthenticationError},
		{name: "server error", status: http.StatusBadGateway, body: `{"message":"upstream"}`, want: apperror.KindServerError},
		{name: "unexpected shape", status: http.StatusOK, body: `{"items":[]}`, want: apperror.KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchReservations(context.Background(), "tok", models.KindPast)
			assert.Equal(t, tt.want, apperror.KindOf(err))
		})
	}
}

func TestSecretStoreFailureIsInvalidRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	defer server.Close()

	providerCfg := &config.ProviderConfig{BaseURL: server.URL}
	client := NewClient(ClientParams{
		Requester: requester.NewHTTPRequester(requester.HTTPRequesterParams{
			ProviderConfig: providerCfg,
			AuthManager:    requester.NewAPIKeyAuthManager(secrets.NewStaticStore("", "")),
		}),
		ProviderConfig: providerCfg,
	})

	err := client.SendVerificationCode(context.Background(), "+15551234567")
	assert.ErrorIs(t, err, apperror.ErrInvalidRequest)
}

func TestVenuesAndBooking(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "service-token", r.Header.Get(requester.AuthTokenHeader))
		switch r.URL.Path {
		case "/venues/search":
			_, _ = w.Write([]byte(`{"results":[{"id":7,"name":"Carbone"}],"total":1}`))
		case "/venues/7":
			_, _ = w.Write([]byte(`{"id":7,"name":"Carbone","location":{"city":"New York"}}`))
		case "/reservations":
			_, _ = w.Write([]byte(`{"reservation_id":98765}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	search, err := client.SearchVenues(ctx, &models.VenueSearchRequest{Day: "2026-10-20", PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, search.Total)

	venue, err := client.GetVenue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "New York", venue.Location.City)

	booking, err := client.BookReservation(ctx, "", &models.BookingRequest{VenueID: 7, PartySize: 2, Day: "2026-10-20", Time: "19:00"})
	require.NoError(t, err)
	assert.Equal(t, "98765", booking.ReservationID)
}

func TestBookReservation_Errors(t *testing.T) {
	tests := []struct {
		status int
		want   apperror.Kind
	}{
		{status: http.StatusConflict, want: apperror.KindNoAvailability},
		{status: http.StatusPreconditionFailed, want: apperror.KindNoAvailability},
		{status: http.StatusBadRequest, want: apperror.KindBookingFailed},
		{status: http.StatusNotFound, want: apperror.KindBookingFailed},
		{status: http.StatusUnauthorized, want: apperror.KindAuthenticationError},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "user-token", r.Header.Get(requester.AuthTokenHeader))
				w.WriteHeader(tt.status)
			})

			_, err := client.BookReservation(context.Background(), "user-token", &models.BookingRequest{VenueID: 7})
			assert.Equal(t, tt.want, apperror.KindOf(err))
		})
	}
}
