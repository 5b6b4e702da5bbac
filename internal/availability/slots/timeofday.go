package slots

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time on an unspecified day, in minutes since
// midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" and the "HH:MM:SS" form Postgres returns for
// time columns. Seconds must be zero.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 2 || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec != 0 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
	}

	return TimeOfDay(h*60 + m), nil
}

// ParseClosingTime is ParseTimeOfDay plus "24:00", read as the end of the
// day. Only the exclusive end of a window may take that value.
func ParseClosingTime(s string) (TimeOfDay, error) {
	switch strings.TrimSpace(s) {
	case "24:00", "24:00:00":
		return minutesPerDay, nil
	}
	return ParseTimeOfDay(s)
}

func MustParseClosingTime(s string) TimeOfDay {
	t, err := ParseClosingTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On combines t with the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// StartOfDay returns local midnight of day's calendar date.
func StartOfDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location())
}

// EndOfDay returns the next local midnight, which is not always 24h later.
func EndOfDay(day time.Time) time.Time {
	return StartOfDay(day).AddDate(0, 0, 1)
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
