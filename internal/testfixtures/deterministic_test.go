package testfixtures

import (
	"testing"
	"time"
)

func TestClockStartsAtReferenceTimeAndAdvances(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected reference time, got %v", clock.Now())
	}

	now := clock.NowFunc()
	clock.Advance(90 * time.Minute)
	if got := now(); !got.Equal(ReferenceTime().Add(90 * time.Minute)) {
		t.Fatalf("expected NowFunc to follow the clock, got %v", got)
	}

	target := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	clock.Set(target)
	if !clock.Now().Equal(target) {
		t.Fatalf("expected %v after Set, got %v", target, clock.Now())
	}
}

func TestNilClockFallsBackToWallTime(t *testing.T) {
	var clock *Clock
	before := time.Now()
	if got := clock.NowFunc()(); got.Before(before) {
		t.Fatalf("expected wall time, got %v", got)
	}
}

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("booking")
	if first, second := gen.Next(), gen.Next(); first != "booking-1" || second != "booking-2" {
		t.Fatalf("unexpected identifiers %q, %q", first, second)
	}
	if gen.Issued() != 2 {
		t.Fatalf("expected 2 issued, got %d", gen.Issued())
	}
	if got := NewIDGenerator("").Next(); got != "id-1" {
		t.Fatalf("expected default prefix, got %q", got)
	}
}
