package models

import (
	"fmt"
	"time"
)

// DateLayout is the layout of Reservation.Date
const DateLayout = "2006-01-02"

// ReservationStatus is the internal status vocabulary
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusPending   ReservationStatus = "pending"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// ReservationKind selects which reservations to fetch
type ReservationKind string

const (
	KindAll      ReservationKind = "all"
	KindPast     ReservationKind = "past"
	KindUpcoming ReservationKind = "upcoming"
)

// ParseReservationKind parses a kind name, treating "" as KindAll
func ParseReservationKind(s string) (ReservationKind, error) {
	switch ReservationKind(s) {
	case "", KindAll:
		return KindAll, nil
	case KindPast, KindUpcoming:
		return ReservationKind(s), nil
	default:
		return "", fmt.Errorf("unknown reservation kind %q", s)
	}
}

// Reservation is a normalized reservation record
type Reservation struct {
	ID        string            `json:"id"`
	VenueID   int64             `json:"venueId"`
	VenueName string            `json:"venueName"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	PartySize int               `json:"partySize"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Day parses the reservation date as midnight in loc
func (r Reservation) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, r.Date, loc)
}

// ReservationsResponse keeps provider order and is never deduplicated
type ReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
}

// ReservationRecord is the durable record written after a booking
type ReservationRecord struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	VenueID   int64             `json:"venueId"`
	Date      string            `json:"date"`
	PartySize int               `json:"partySize"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}
