package entity

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	all := []ReviewStatus{
		ReviewStatusPending, ReviewStatusAccepted, ReviewStatusRejected,
		ReviewStatusScheduled, ReviewStatusCompleted, ReviewStatusCancelled,
	}

	allowed := map[[2]ReviewStatus]bool{
		{ReviewStatusPending, ReviewStatusPending}:     true,
		{ReviewStatusPending, ReviewStatusAccepted}:    true,
		{ReviewStatusPending, ReviewStatusRejected}:    true,
		{ReviewStatusPending, ReviewStatusCancelled}:   true,
		{ReviewStatusAccepted, ReviewStatusScheduled}:  true,
		{ReviewStatusAccepted, ReviewStatusCancelled}:  true,
		{ReviewStatusAccepted, ReviewStatusCompleted}:  true,
		{ReviewStatusScheduled, ReviewStatusScheduled}: true,
		{ReviewStatusScheduled, ReviewStatusCancelled}: true,
		{ReviewStatusScheduled, ReviewStatusCompleted}: true,
	}

	// every pair not in the allow list must be rejected, including all
	// transitions out of terminal states
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ReviewStatus{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []ReviewStatus{ReviewStatusRejected, ReviewStatusCompleted, ReviewStatusCancelled}
	active := []ReviewStatus{ReviewStatusPending, ReviewStatusAccepted, ReviewStatusScheduled}

	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
		if s.Occupies() {
			t.Errorf("%s should not occupy its window", s)
		}
	}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
		if !s.Occupies() {
			t.Errorf("%s should occupy its window", s)
		}
	}
}

func TestReviewWindow(t *testing.T) {
	r := &Review{
		ScheduledAt:     time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	}

	w := r.Window()
	if w.String() != "09:00-09:30" {
		t.Errorf("Window() = %s, want 09:00-09:30", w)
	}

	if got := r.EndsAt(); !got.Equal(time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("EndsAt() = %v", got)
	}
}
