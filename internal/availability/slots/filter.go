package slots

import "time"

type Reason string

const (
	ReasonPast         Reason = "past"
	ReasonOutsideHours Reason = "outside-hours"
	ReasonBooked       Reason = "booked"
	ReasonBlocked      Reason = "blocked"
)

type Evaluation struct {
	Time      TimeOfDay `json:"time"`
	Available bool      `json:"available"`
	Reason    Reason    `json:"reason,omitempty"`
}

// Input is everything one day's evaluation needs. Day carries the business
// location; Bookings and Blackouts are absolute intervals.
type Input struct {
	Day             time.Time
	Hours           Window
	Interval        int
	DurationMinutes int
	Bookings        []Interval
	Blackouts       []Interval
	Now             time.Time
}

// Evaluate tags every generated slot. Checks run in the order past,
// outside-hours, booked, blocked and the first failing one is the reason.
func Evaluate(in Input) []Evaluation {
	return ApplyPastCutoff(in.Day, EvaluateConflicts(in), in.Now)
}

// EvaluateConflicts runs every check except the past cutoff. Its result does
// not depend on the clock and can be cached.
func EvaluateConflicts(in Input) []Evaluation {
	grid := Generate(in.Hours, in.Interval)
	out := make([]Evaluation, 0, len(grid))
	closing := in.Hours.Close.On(in.Day)

	for _, t := range grid {
		slot := IntervalOn(in.Day, t, in.DurationMinutes)
		out = append(out, Evaluation{Time: t, Available: true})
		e := &out[len(out)-1]

		switch {
		case slot.End.After(closing):
			e.Available, e.Reason = false, ReasonOutsideHours
		case overlapsAny(slot, in.Bookings):
			e.Available, e.Reason = false, ReasonBooked
		case overlapsAny(slot, in.Blackouts):
			e.Available, e.Reason = false, ReasonBlocked
		}
	}
	return out
}

// ApplyPastCutoff marks slots that start strictly before now as past, but only
// when day is now's calendar date in day's location. It returns a new slice.
func ApplyPastCutoff(day time.Time, evals []Evaluation, now time.Time) []Evaluation {
	out := make([]Evaluation, len(evals))
	copy(out, evals)

	if now.IsZero() || !SameDate(day, now.In(day.Location())) {
		return out
	}
	for i := range out {
		if out[i].Time.On(day).Before(now) {
			out[i].Available, out[i].Reason = false, ReasonPast
		}
	}
	return out
}

// Available is the minimal variant: the ascending list of bookable starts.
func Available(in Input) []TimeOfDay {
	return AvailableTimes(Evaluate(in))
}

func AvailableTimes(evals []Evaluation) []TimeOfDay {
	out := make([]TimeOfDay, 0, len(evals))
	for _, e := range evals {
		if e.Available {
			out = append(out, e.Time)
		}
	}
	return out
}

func overlapsAny(slot Interval, spans []Interval) bool {
	for _, s := range spans {
		if slot.Overlaps(s) {
			return true
		}
	}
	return false
}
