package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/requester"
)

// SearchVenues forwards a venue search using the service credentials
func (c *Client) SearchVenues(ctx context.Context, req *models.VenueSearchRequest) (*models.VenueSearchResponse, error) {
	resp, err := c.do(ctx, &requester.Request{
		Method:       http.MethodPost,
		Path:         pathVenueSearch,
		JSON:         req,
		ServiceToken: true,
	})
	if err != nil {
		return nil, err
	}

	var out models.VenueSearchResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidResponse, err)
	}
	return &out, nil
}

// GetVenue returns one venue using the service credentials
func (c *Client) GetVenue(ctx context.Context, id int64) (*models.Venue, error) {
	resp, err := c.do(ctx, &requester.Request{
		Method:       http.MethodGet,
		Path:         fmt.Sprintf(pathVenue, id),
		ServiceToken: true,
	})
	if err != nil {
		return nil, err
	}

	var out models.Venue
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidResponse, err)
	}
	return &out, nil
}

// BookReservation books a slot. An empty authToken books with the service token.
// A 409 or 412 from the provider means the slot is gone.
func (c *Client) BookReservation(ctx context.Context, authToken string, req *models.BookingRequest) (*models.BookingResult, error) {
	resp, err := c.send(ctx, &requester.Request{
		Method:       http.MethodPost,
		Path:         pathBook,
		JSON:         req,
		AuthToken:    authToken,
		ServiceToken: authToken == "",
	})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusConflict, http.StatusPreconditionFailed:
		return nil, apperror.Wrap(apperror.KindNoAvailability, httpError(resp))
	}
	if err := statusError(pathBook, resp); err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindUnknown, apperror.KindInvalidPhoneNumber:
			return nil, apperror.Wrap(apperror.KindBookingFailed, httpError(resp))
		}
		return nil, err
	}

	var out struct {
		ReservationID flexString `json:"reservation_id"`
		ResyToken     flexString `json:"resy_token"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidResponse, err)
	}
	id := firstNonEmpty(string(out.ReservationID), string(out.ResyToken))
	if id == "" {
		return nil, apperror.Wrap(apperror.KindBookingFailed, fmt.Errorf("booking response has no reservation id"))
	}
	return &models.BookingResult{ReservationID: id}, nil
}
