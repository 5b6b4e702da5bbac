package slotctl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"salonbook/pkg/client"
	"salonbook/pkg/middleware"
)

const (
	EnvAvailabilityURL     = "AVAILABILITY_URL"
	DefaultAvailabilityURL = "http://localhost:8080"
)

type options struct {
	baseURL string
	timeout time.Duration
	asJSON  bool
}

// query names one technician, day and appointment length.
type query struct {
	technicianID string
	date         string
	duration     int
	interval     int
}

func (q query) values() url.Values {
	v := url.Values{}
	v.Set("technician_id", q.technicianID)
	v.Set("date", q.date)
	v.Set("duration", strconv.Itoa(q.duration))
	if q.interval > 0 {
		v.Set("interval", strconv.Itoa(q.interval))
	}
	return v
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "slotctl",
		Short: "Inspect appointment availability",
		Long: `slotctl queries the availability service for a technician's bookable
start times, or for the full evaluation grid with rejection reasons.

Examples:
  slotctl slots --technician tech-1 --date 2024-06-03 --duration 60
  slotctl explain --technician tech-1 --date 2024-06-03 --duration 90 --interval 15`,
		SilenceUsage: true,
	}

	baseURL := os.Getenv(EnvAvailabilityURL)
	if baseURL == "" {
		baseURL = DefaultAvailabilityURL
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "url", baseURL, "availability service base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print the raw JSON response")

	root.AddCommand(newSlotsCmd(opts), newExplainCmd(opts))
	return root
}

func addQueryFlags(cmd *cobra.Command, q *query) {
	cmd.Flags().StringVarP(&q.technicianID, "technician", "t", "", "technician id")
	cmd.Flags().StringVarP(&q.date, "date", "d", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&q.duration, "duration", "m", 0, "appointment length in minutes")
	cmd.Flags().IntVar(&q.interval, "interval", 0, "grid step in minutes (default from business settings)")
	_ = cmd.MarkFlagRequired("technician")
	_ = cmd.MarkFlagRequired("duration")
}

// fetch calls path and returns the body of a 200 response. Any other status
// becomes an error carrying the service's message.
func fetch(ctx context.Context, opts *options, path string, q query) (*client.Response, error) {
	c := client.NewHttpClient(opts.baseURL, opts.timeout)
	headers := map[string]string{middleware.RequestIDHeader: uuid.NewString()}

	resp, err := c.GET(ctx, path+"?"+q.values().Encode(), headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability service: %s (status %d)", client.GetErrorMessage(resp), resp.StatusCode)
	}
	return resp, nil
}
