package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/availability/service"
	"salonbook/internal/availability/slots"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
)

// SessionHeader carries the booking session a request belongs to. Requests
// without it are never reported as superseded.
const SessionHeader = "X-Booking-Session"

type SlotsResponse struct {
	TechnicianID    string            `json:"technician_id"`
	Date            string            `json:"date"`
	DurationMinutes int               `json:"duration_minutes"`
	Interval        int               `json:"interval_minutes"`
	Slots           []slots.TimeOfDay `json:"slots"`
}

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
	now     func() time.Time
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
		now:     time.Now,
	}
}

// Slots lists the bookable start times for one technician and day.
func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, ok := h.evaluate(w, r, "Slots")
	if !ok {
		return
	}

	if err := httputil.WriteSuccess(w, SlotsResponse{
		TechnicianID:    res.TechnicianID,
		Date:            res.Date,
		DurationMinutes: res.DurationMinutes,
		Interval:        res.Interval,
		Slots:           res.Slots(),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

// Evaluation returns every generated candidate with the reason it was
// rejected, for staff tooling.
func (h *AvailabilityHandler) Evaluation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, ok := h.evaluate(w, r, "Evaluation")
	if !ok {
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "Evaluation", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) evaluate(w http.ResponseWriter, r *http.Request, name string) (*service.Result, bool) {
	req, err := parseRequest(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return nil, false
	}

	res, err := h.service.Evaluate(r.Context(), req, h.now())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return nil, false
	}
	return res, true
}

func parseRequest(r *http.Request) (service.Request, error) {
	query := r.URL.Query()

	duration, err := httputil.QueryInt(r, "duration", 0)
	if err != nil {
		return service.Request{}, err
	}
	interval, err := httputil.QueryInt(r, "interval", 0)
	if err != nil {
		return service.Request{}, err
	}

	return service.Request{
		TechnicianID:    query.Get("technician_id"),
		Date:            query.Get("date"),
		DurationMinutes: duration,
		Interval:        interval,
		Session:         r.Header.Get(SessionHeader),
	}, nil
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/slots", h.Slots)
	router.GET("/api/v1/availability/evaluation", h.Evaluation)
}
