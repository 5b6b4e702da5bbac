package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"salonbook/pkg/client"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/middleware"
)

const slotsPath = "/api/v1/availability/slots"

// SlotChecker reports the start times currently bookable for a technician,
// date and duration.
type SlotChecker interface {
	AvailableStarts(ctx context.Context, technicianID, date string, durationMinutes int) ([]string, error)
}

type availabilityClient struct {
	http *client.HttpClient
}

func NewAvailabilityClient(baseURL string, timeout time.Duration) SlotChecker {
	return &availabilityClient{http: client.NewHttpClient(baseURL, timeout)}
}

func (c *availabilityClient) AvailableStarts(ctx context.Context, technicianID, date string, durationMinutes int) ([]string, error) {
	query := url.Values{}
	query.Set("technician_id", technicianID)
	query.Set("date", date)
	query.Set("duration", strconv.Itoa(durationMinutes))

	headers := map[string]string{}
	if id := middleware.RequestIDFrom(ctx); id != "" {
		headers[middleware.RequestIDHeader] = id
	}

	resp, err := c.http.GET(ctx, slotsPath+"?"+query.Encode(), headers)
	if err != nil {
		return nil, apperrors.Unavailable("Availability service unreachable", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return nil, apperrors.InvalidInput(client.GetErrorMessage(resp))
	default:
		return nil, apperrors.New(apperrors.CodeUnavailable,
			"Availability check failed: "+client.GetErrorMessage(resp), http.StatusServiceUnavailable)
	}

	var body struct {
		Data struct {
			Slots []string `json:"slots"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, apperrors.Unavailable("Availability service returned an unreadable response", err)
	}
	return body.Data.Slots, nil
}
