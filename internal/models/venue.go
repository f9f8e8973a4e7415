package models

// VenueSearchRequest is forwarded to the provider's venue search
type VenueSearchRequest struct {
	Lat       *float64 `json:"lat,omitempty"`
	Long      *float64 `json:"long,omitempty"`
	Day       string   `json:"day"`
	PartySize int      `json:"party_size"`
	VenueID   *int64   `json:"venue_id,omitempty"`
}

// VenueSearchResponse is the provider's venue search result
type VenueSearchResponse struct {
	Results []Venue `json:"results"`
	Total   int     `json:"total"`
}

// Venue is a restaurant as described by the provider
type Venue struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Location    Location   `json:"location"`
	Price       int        `json:"price"`
	Rating      *float64   `json:"rating,omitempty"`
	Description string     `json:"description,omitempty"`
	Photos      []Photo    `json:"photos,omitempty"`
	Slots       []TimeSlot `json:"slots,omitempty"`
}

type Location struct {
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Lat        float64 `json:"lat"`
	Long       float64 `json:"long"`
}

type Photo struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BookingRequest asks the provider to book a slot
type BookingRequest struct {
	VenueID   int64  `json:"venue_id"`
	PartySize int    `json:"party_size"`
	Day       string `json:"day"`
	Time      string `json:"time"`
}

// BookingResult is the provider's answer to a booking
type BookingResult struct {
	ReservationID string `json:"reservation_id"`
}
