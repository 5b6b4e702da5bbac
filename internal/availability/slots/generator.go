package slots

import "time"

// Window is the working-hours span of one day. Close is exclusive.
type Window struct {
	Open  TimeOfDay `json:"open"`
	Close TimeOfDay `json:"close"`
}

func (w Window) Valid() bool {
	return w.Open >= 0 && w.Close <= minutesPerDay && w.Open < w.Close
}

// Generate returns Open, Open+interval, ... for every value strictly before
// Close. A trailing partial period yields no slot.
func Generate(w Window, interval int) []TimeOfDay {
	if interval <= 0 || !w.Valid() {
		return nil
	}

	out := make([]TimeOfDay, 0, (int(w.Close-w.Open)+interval-1)/interval)
	for t := w.Open; t < w.Close; t += TimeOfDay(interval) {
		out = append(out, t)
	}
	return out
}

// Interval is an absolute half-open span [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IntervalOn anchors start on day and extends it by minutes.
func IntervalOn(day time.Time, start TimeOfDay, minutes int) Interval {
	s := start.On(day)
	return Interval{Start: s, End: s.Add(time.Duration(minutes) * time.Minute)}
}

// Overlaps reports whether [a,b) and [c,d) share any instant: a < d && b > c.
// Intervals that only touch do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}
