package application

import (
	"strings"
	"testing"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
)

func TestValidateStructBookingInput(t *testing.T) {
	t.Parallel()

	vErr := validateStruct(BookingInput{Notes: strings.Repeat("x", 2001), Recurrence: "monthly"})
	want := map[string]string{
		"resource_id": "resource id is required",
		"notes":       "notes must be at most 2000 characters",
		"recurrence":  "recurrence is invalid",
	}
	for field, msg := range want {
		if got := vErr.FieldErrors[field]; got != msg {
			t.Errorf("field %s: got %q, want %q", field, got, msg)
		}
	}
	if len(vErr.FieldErrors) != len(want) {
		t.Fatalf("unexpected field errors %v", vErr.FieldErrors)
	}
}

func TestValidateStructResourceInput(t *testing.T) {
	t.Parallel()

	valid := ResourceInput{
		Title:       "Room 101",
		Description: "Seminar room",
		Category:    domain.CategoryEventSpace,
		Location:    "Main Building",
		Capacity:    30,
		Equipment:   []string{"Projector"},
		Status:      domain.ResourcePublished,
	}
	if vErr := validateStruct(valid); vErr.HasErrors() {
		t.Fatalf("expected valid input, got %v", vErr.FieldErrors)
	}

	invalid := valid
	invalid.Category = "spaceship"
	invalid.Capacity = 0
	invalid.Status = domain.ResourceArchived
	vErr := validateStruct(invalid)
	if vErr.FieldErrors["category"] != "category is invalid" {
		t.Errorf("unexpected category message %q", vErr.FieldErrors["category"])
	}
	if vErr.FieldErrors["capacity"] != "capacity must be positive" {
		t.Errorf("unexpected capacity message %q", vErr.FieldErrors["capacity"])
	}
	if vErr.FieldErrors["status"] != "status must be one of: draft, published" {
		t.Errorf("unexpected status message %q", vErr.FieldErrors["status"])
	}
}

func TestValidateTimeRange(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.September, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		start, end time.Time
		want       map[string]string
	}{
		{name: "valid", start: start, end: start.Add(time.Hour), want: map[string]string{}},
		{name: "missing", want: map[string]string{"start": "start is required", "end": "end is required"}},
		{name: "equal", start: start, end: start, want: map[string]string{"end": "start must be before end"}},
		{name: "inverted", start: start, end: start.Add(-time.Minute), want: map[string]string{"end": "start must be before end"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			vErr := &ValidationError{}
			validateTimeRange(vErr, tc.start, tc.end)
			if len(vErr.FieldErrors) != len(tc.want) {
				t.Fatalf("got %v, want %v", vErr.FieldErrors, tc.want)
			}
			for field, msg := range tc.want {
				if vErr.FieldErrors[field] != msg {
					t.Fatalf("field %s: got %q, want %q", field, vErr.FieldErrors[field], msg)
				}
			}
		})
	}
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"ResourceID":        "resource_id",
		"ProfileImage":      "profile_image",
		"AvailabilityRules": "availability_rules",
		"Start":             "start",
	} {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
