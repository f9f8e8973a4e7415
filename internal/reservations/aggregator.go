// Package reservations fetches the user's reservations and splits them into past and upcoming.
package reservations

import (
	"context"
	"strings"
	"time"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TokenSource yields the current session token, "" when logged out
type TokenSource interface {
	AuthToken(ctx context.Context) (string, error)
}

// Fetcher retrieves reservations from the provider
type Fetcher interface {
	FetchReservations(ctx context.Context, authToken string, kind models.ReservationKind) (*models.ReservationsResponse, error)
}

// Aggregator lists the logged-in user's reservations and partitions them into past and upcoming
type Aggregator struct {
	tokens    TokenSource
	fetcher   Fetcher
	partition config.PartitionMode
	location  *time.Location
	now       func() time.Time
}

// AggregatorParams are the dependencies of the aggregator
type AggregatorParams struct {
	fx.In

	Tokens  TokenSource
	Fetcher Fetcher
	Config  *config.ReservationsConfig
}

// NewAggregator creates a new Aggregator. It fails when the configured timezone is unknown.
func NewAggregator(params AggregatorParams) (*Aggregator, error) {
	loc, err := params.Config.Location()
	if err != nil {
		return nil, err
	}
	partition := params.Config.Partition
	if partition == "" {
		partition = config.PartitionServer
	}
	return &Aggregator{
		tokens:    params.Tokens,
		fetcher:   params.Fetcher,
		partition: partition,
		location:  loc,
		now:       time.Now,
	}, nil
}

// GetReservations returns all reservations of the logged-in user
func (a *Aggregator) GetReservations(ctx context.Context) (*models.ReservationsResponse, error) {
	return a.fetchWithSession(ctx, models.KindAll)
}

// GetUpcoming returns reservations dated today or later
func (a *Aggregator) GetUpcoming(ctx context.Context) (*models.ReservationsResponse, error) {
	return a.fetchWithSession(ctx, models.KindUpcoming)
}

// GetPast returns reservations dated before today
func (a *Aggregator) GetPast(ctx context.Context) (*models.ReservationsResponse, error) {
	return a.fetchWithSession(ctx, models.KindPast)
}

func (a *Aggregator) fetchWithSession(ctx context.Context, kind models.ReservationKind) (*models.ReservationsResponse, error) {
	token, err := a.tokens.AuthToken(ctx)
	if err != nil {
		return nil, err
	}
	return a.Fetch(ctx, token, kind)
}

// Fetch returns the reservations of kind for an explicit token. Past and upcoming results are
// always re-filtered locally, whatever the provider did with the kind filter.
func (a *Aggregator) Fetch(ctx context.Context, token string, kind models.ReservationKind) (*models.ReservationsResponse, error) {
	if token == "" {
		return nil, apperror.New(apperror.KindAuthenticationError)
	}

	remoteKind := kind
	if a.partition == config.PartitionClient {
		remoteKind = models.KindAll
	}

	resp, err := a.fetcher.FetchReservations(ctx, token, remoteKind)
	if err != nil {
		return nil, err
	}

	today := a.today()
	out := make([]models.Reservation, 0, len(resp.Reservations))
	for _, r := range resp.Reservations {
		r.Status = MapStatus(string(r.Status))
		if !a.matches(r, kind, today) {
			continue
		}
		out = append(out, r)
	}

	logger.Debug("reservations aggregated",
		zap.String("kind", string(kind)),
		zap.String("partition", string(a.partition)),
		zap.Int("fetched", len(resp.Reservations)),
		zap.Int("returned", len(out)),
	)
	return &models.ReservationsResponse{Reservations: out}, nil
}

func (a *Aggregator) today() time.Time {
	now := a.now().In(a.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location)
}

func (a *Aggregator) matches(r models.Reservation, kind models.ReservationKind, today time.Time) bool {
	switch kind {
	case models.KindPast:
		return IsPast(r, today, a.location)
	case models.KindUpcoming:
		return !IsPast(r, today, a.location)
	default:
		return true
	}
}

// IsPast reports whether r falls before today at day granularity. Unparseable dates count as
// upcoming.
func IsPast(r models.Reservation, today time.Time, loc *time.Location) bool {
	day, err := r.Day(loc)
	if err != nil {
		return false
	}
	return day.Before(today)
}

var statusMap = map[string]models.ReservationStatus{
	"confirmed":  models.StatusConfirmed,
	"booked":     models.StatusConfirmed,
	"reserved":   models.StatusConfirmed,
	"pending":    models.StatusPending,
	"waitlisted": models.StatusPending,
	"waitlist":   models.StatusPending,
	"requested":  models.StatusPending,
	"cancelled":  models.StatusCancelled,
	"canceled":   models.StatusCancelled,
	"no_show":    models.StatusCancelled,
	"completed":  models.StatusCompleted,
	"seated":     models.StatusCompleted,
	"finished":   models.StatusCompleted,
}

// MapStatus translates a provider status into the internal vocabulary; unknown values are pending
func MapStatus(provider string) models.ReservationStatus {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(provider)), "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if s, ok := statusMap[key]; ok {
		return s
	}
	return models.StatusPending
}
