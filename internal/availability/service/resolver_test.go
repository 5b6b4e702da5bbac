package service

import (
	"testing"
	"time"

	"salonbook/internal/availability/slots"
	"salonbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWorkingHours(t *testing.T) {
	tests := []struct {
		name       string
		rows       []model.WorkingHours
		wantWindow slots.Window
		wantClosed bool
		wantErr    error
	}{
		{
			name:       "no rows",
			wantClosed: true,
		},
		{
			name:       "only inactive rows",
			rows:       []model.WorkingHours{{StartTime: "09:00", EndTime: "17:00"}},
			wantClosed: true,
		},
		{
			name: "one active row among inactive ones",
			rows: []model.WorkingHours{
				{StartTime: "08:00", EndTime: "12:00"},
				{StartTime: "09:00", EndTime: "17:00", IsActive: true},
			},
			wantWindow: slots.Window{Open: slots.MustParseTimeOfDay("09:00"), Close: slots.MustParseTimeOfDay("17:00")},
		},
		{
			name: "seconds suffix accepted",
			rows: []model.WorkingHours{{StartTime: "09:00:00", EndTime: "13:30:00", IsActive: true}},
			wantWindow: slots.Window{Open: slots.MustParseTimeOfDay("09:00"), Close: slots.MustParseTimeOfDay("13:30")},
		},
		{
			name:       "closes at midnight",
			rows:       []model.WorkingHours{{StartTime: "18:00:00", EndTime: "24:00:00", IsActive: true}},
			wantWindow: slots.Window{Open: slots.MustParseTimeOfDay("18:00"), Close: slots.MustParseClosingTime("24:00")},
		},
		{
			name:    "midnight is not an opening time",
			rows:    []model.WorkingHours{{StartTime: "24:00", EndTime: "24:00", IsActive: true}},
			wantErr: ErrInvalidWorkingHours,
		},
		{
			name: "two active rows",
			rows: []model.WorkingHours{
				{StartTime: "09:00", EndTime: "17:00", IsActive: true},
				{StartTime: "10:00", EndTime: "18:00", IsActive: true},
			},
			wantErr: ErrAmbiguousWorkingHours,
		},
		{
			name:    "close before open",
			rows:    []model.WorkingHours{{StartTime: "17:00", EndTime: "09:00", IsActive: true}},
			wantErr: ErrInvalidWorkingHours,
		},
		{
			name:    "unparseable time",
			rows:    []model.WorkingHours{{StartTime: "nine", EndTime: "17:00", IsActive: true}},
			wantErr: ErrInvalidWorkingHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, closed, err := resolveWorkingHours(tt.rows)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantClosed, closed)
			assert.Equal(t, tt.wantWindow, w)
		})
	}
}

func TestBookingInterval(t *testing.T) {
	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return time.Date(2024, time.June, 3, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		booking model.Booking
		want    slots.Interval
		wantErr bool
	}{
		{
			name:    "end time",
			booking: model.Booking{ID: "b", StartTime: "11:00", EndTime: "12:15"},
			want:    slots.Interval{Start: at(11, 0), End: at(12, 15)},
		},
		{
			name:    "duration only",
			booking: model.Booking{ID: "b", StartTime: "11:00", DurationMinutes: 45},
			want:    slots.Interval{Start: at(11, 0), End: at(11, 45)},
		},
		{
			name:    "end time not after start falls back to duration",
			booking: model.Booking{ID: "b", StartTime: "11:00", EndTime: "11:00", DurationMinutes: 30},
			want:    slots.Interval{Start: at(11, 0), End: at(11, 30)},
		},
		{
			name:    "neither end nor duration",
			booking: model.Booking{ID: "b", StartTime: "11:00"},
			wantErr: true,
		},
		{
			name:    "bad start",
			booking: model.Booking{ID: "b", StartTime: "25:00", DurationMinutes: 30},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bookingInterval(day, tt.booking)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Start.Equal(got.Start), "start %v", got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end %v", got.End)
		})
	}
}
