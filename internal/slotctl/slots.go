package slotctl

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const slotsPath = "/api/v1/availability/slots"

type slotsResponse struct {
	Data struct {
		TechnicianID    string   `json:"technician_id"`
		Date            string   `json:"date"`
		DurationMinutes int      `json:"duration_minutes"`
		Interval        int      `json:"interval_minutes"`
		Slots           []string `json:"slots"`
	} `json:"data"`
}

func newSlotsCmd(opts *options) *cobra.Command {
	var q query
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List bookable start times",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetch(cmd.Context(), opts, slotsPath, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				_, err := fmt.Fprintln(out, string(resp.Body))
				return err
			}

			var body slotsResponse
			if err := resp.DecodeJSON(&body); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			d := body.Data
			fmt.Fprintf(out, "%s on %s, %d min every %d min\n", d.TechnicianID, d.Date, d.DurationMinutes, d.Interval)
			if len(d.Slots) == 0 {
				fmt.Fprintln(out, "no available slots")
				return nil
			}
			fmt.Fprintln(out, strings.Join(d.Slots, " "))
			return nil
		},
	}
	addQueryFlags(cmd, &q)
	return cmd
}
