// Package handler provides the HTTP routes of the reservation proxy.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/brizzai/resy-client/internal/apidoc"
	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/server/middleware"
	"github.com/brizzai/resy-client/internal/store"
	"github.com/brizzai/resy-client/internal/utils"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ReservationFetcher lists reservations for an explicit provider token
type ReservationFetcher interface {
	Fetch(ctx context.Context, token string, kind models.ReservationKind) (*models.ReservationsResponse, error)
}

// VenueGateway forwards venue and booking calls to the provider
type VenueGateway interface {
	SearchVenues(ctx context.Context, req *models.VenueSearchRequest) (*models.VenueSearchResponse, error)
	GetVenue(ctx context.Context, id int64) (*models.Venue, error)
	BookReservation(ctx context.Context, authToken string, req *models.BookingRequest) (*models.BookingResult, error)
}

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	reservations ReservationFetcher
	venues       VenueGateway
	records      store.ReservationStore
	doc          *apidoc.Document
}

// Params are the dependencies of the proxy handler
type Params struct {
	fx.In

	Reservations ReservationFetcher
	Venues       VenueGateway
	Records      store.ReservationStore
	Doc          *apidoc.Document
}

// NewHandler creates a new Handler serving the proxy routes
func NewHandler(params Params) *Handler {
	return &Handler{
		reservations: params.Reservations,
		venues:       params.Venues,
		records:      params.Records,
		doc:          params.Doc,
	}
}

// CreateHTTPHandler builds the route table wrapped in the logging and CORS middleware
func (h *Handler) CreateHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /openapi.json", h.openAPI)

	mux.Handle("GET /reservations", middleware.RequireAuthToken(h.listReservations(models.KindAll)))
	mux.Handle("GET /reservations/past", middleware.RequireAuthToken(h.listReservations(models.KindPast)))
	mux.Handle("GET /reservations/upcoming", middleware.RequireAuthToken(h.listReservations(models.KindUpcoming)))
	mux.Handle("POST /reservations/book", middleware.RequireAuthToken(http.HandlerFunc(h.book)))

	mux.HandleFunc("POST /venues/search", h.searchVenues)
	mux.HandleFunc("GET /venues/{id}", h.getVenue)

	mux.HandleFunc("/", h.notFound)

	logger.Info("Registered proxy routes", zap.Int("operations", len(h.doc.Operations())))
	return middleware.Logging(middleware.CORS(mux))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) openAPI(w http.ResponseWriter, r *http.Request) {
	utils.WriteRaw(w, http.StatusOK, h.doc.JSON())
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "Not Found")
}

func (h *Handler) listReservations(kind models.ReservationKind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.reservations.Fetch(r.Context(), middleware.AuthToken(r.Context()), kind)
		if err != nil {
			utils.WriteAppError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, resp)
	})
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if !h.decodeBody(w, r, "/reservations/book", &req) {
		return
	}

	result, err := h.venues.BookReservation(r.Context(), middleware.AuthToken(r.Context()), &req)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	record := &models.ReservationRecord{
		ID:        result.ReservationID,
		UserID:    strings.TrimSpace(r.Header.Get(middleware.UserIDHeader)),
		VenueID:   req.VenueID,
		Date:      req.Day,
		PartySize: req.PartySize,
		Status:    models.StatusConfirmed,
	}
	if err := h.records.Put(r.Context(), record); err != nil {
		// the provider booking stands; only the local record is missing
		logger.Error("failed to store reservation record",
			zap.String("reservation_id", result.ReservationID),
			zap.Error(err),
		)
		utils.WriteAppError(w, apperror.Wrap(apperror.KindUnknown, err))
		return
	}

	logger.Info("reservation booked",
		zap.String("reservation_id", record.ID),
		zap.Int64("venue_id", record.VenueID),
		zap.String("date", record.Date),
	)
	utils.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) searchVenues(w http.ResponseWriter, r *http.Request) {
	var req models.VenueSearchRequest
	if !h.decodeBody(w, r, "/venues/search", &req) {
		return
	}

	resp, err := h.venues.SearchVenues(r.Context(), &req)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) getVenue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteAppError(w, apperror.Wrap(apperror.KindInvalidRequest, err))
		return
	}

	venue, err := h.venues.GetVenue(r.Context(), id)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, venue)
}

// decodeBody validates the body against the documented schema of pathTemplate and decodes it
// into v. It writes the error response itself and reports whether the caller may continue.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, pathTemplate string, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteAppError(w, apperror.Wrap(apperror.KindInvalidRequest, err))
		return false
	}
	if err := h.doc.ValidateBody(r.Method, pathTemplate, body); err != nil {
		utils.WriteAppError(w, apperror.Wrap(apperror.KindInvalidRequest, err))
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		utils.WriteAppError(w, apperror.Wrap(apperror.KindInvalidRequest, err))
		return false
	}
	return true
}
