package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/requester"
	"go.uber.org/zap"
)

// FetchReservations pages through the user's reservations of the given kind. Pages are
// concatenated in provider order with repeated ids dropped. Paging stops on a short page or on a
// page that adds nothing new. Statuses are returned in the provider's vocabulary.
func (c *Client) FetchReservations(ctx context.Context, authToken string, kind models.ReservationKind) (*models.ReservationsResponse, error) {
	if authToken == "" {
		return nil, apperror.New(apperror.KindAuthenticationError)
	}

	all := make([]models.Reservation, 0)
	seen := make(map[string]struct{})
	offset := 0
	complete := false
	for page := 0; page < maxPages; page++ {
		query := url.Values{
			"limit":  {strconv.Itoa(c.pageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		if kind != "" && kind != models.KindAll {
			query.Set("type", string(kind))
		}

		resp, err := c.do(ctx, &requester.Request{
			Method:    http.MethodGet,
			Path:      pathReservations,
			Query:     query,
			AuthToken: authToken,
		})
		if err != nil {
			return nil, err
		}

		batch, err := decodeReservations(resp.Body)
		if err != nil {
			logger.Error("failed to decode reservations", zap.Error(err))
			return nil, apperror.Wrap(apperror.KindInvalidResponse, err)
		}
		offset += len(batch)

		added := 0
		for _, r := range batch {
			if r.ID != "" {
				if _, dup := seen[r.ID]; dup {
					continue
				}
				seen[r.ID] = struct{}{}
			}
			all = append(all, r)
			added++
		}

		if len(batch) < c.pageSize {
			complete = true
			break
		}
		if added == 0 {
			// the provider is not honoring offset
			logger.Warn("reservations page repeated, stopping pagination",
				zap.Int("page", page), zap.Int("offset", offset))
			complete = true
			break
		}
	}

	if !complete {
		logger.Warn("reservations truncated at page limit",
			zap.Int("pages", maxPages), zap.Int("count", len(all)))
	}
	logger.Debug("reservations fetched", zap.String("kind", string(kind)), zap.Int("count", len(all)))
	return &models.ReservationsResponse{Reservations: all}, nil
}
