package slotctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const evaluationPath = "/api/v1/availability/evaluation"

type evaluationResponse struct {
	Data struct {
		TechnicianID    string `json:"technician_id"`
		Date            string `json:"date"`
		DurationMinutes int    `json:"duration_minutes"`
		Interval        int    `json:"interval_minutes"`
		Evaluations     []struct {
			Time      string `json:"time"`
			Available bool   `json:"available"`
			Reason    string `json:"reason"`
		} `json:"evaluations"`
	} `json:"data"`
}

func newExplainCmd(opts *options) *cobra.Command {
	var q query
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show every candidate start time and why it was rejected",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetch(cmd.Context(), opts, evaluationPath, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				_, err := fmt.Fprintln(out, string(resp.Body))
				return err
			}

			var body evaluationResponse
			if err := resp.DecodeJSON(&body); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tAVAILABLE\tREASON")
			available := 0
			for _, e := range body.Data.Evaluations {
				reason := e.Reason
				if reason == "" {
					reason = "-"
				}
				if e.Available {
					available++
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\n", e.Time, e.Available, reason)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d of %d candidates available\n", available, len(body.Data.Evaluations))
			return nil
		},
	}
	addQueryFlags(cmd, &q)
	return cmd
}
