package validation

import (
	"errors"
	"testing"
)

type sample struct {
	Start  string `validate:"required,valid_time"`
	Status string `validate:"required,booking_status"`
	Phone  string `validate:"omitempty,e164"`
}

func TestIsTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"09:00", true},
		{"23:59", true},
		{"00:00", true},
		{"10:30:00", true},
		{"10:30:15", false},
		{"24:00", false},
		{"9:00", false},
		{"09:60", false},
		{"", false},
		{"noon", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsTimeOfDay(tt.in); got != tt.want {
				t.Errorf("IsTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsClosingTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"18:00", true},
		{"24:00", true},
		{"24:00:00", true},
		{"24:30", false},
		{"25:00", false},
		{"9:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsClosingTime(tt.in); got != tt.want {
				t.Errorf("IsClosingTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := Struct(v, sample{Start: "09:30", Status: "pending", Phone: "+14155550123"}); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}

	err = Struct(v, sample{Start: "9:30", Status: "approved", Phone: "555"})
	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected Errors, got %T: %v", err, err)
	}
	if len(verrs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(verrs), verrs)
	}

	want := map[string]string{
		"Start":  "Start must be a time of day in HH:MM format",
		"Status": "Status is not a known booking status",
		"Phone":  "Phone must be in E.164 format (e.g., +14155550123)",
	}
	for _, fe := range verrs {
		if want[fe.Field] != fe.Message {
			t.Errorf("field %s: got %q, want %q", fe.Field, fe.Message, want[fe.Field])
		}
	}

	details := verrs.Details()["fields"].(map[string]any)
	if details["Start"] != want["Start"] {
		t.Errorf("Details() missing Start: %v", details)
	}
}
