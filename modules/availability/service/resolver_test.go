package service

import (
	"testing"
	"time"

	"review-scheduler/core/errors"
	"review-scheduler/core/timegrid"
	"review-scheduler/modules/availability/entity"

	"github.com/google/uuid"
)

// monday is a fixed Monday used across resolver tests.
var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func recurringSlot(day int, start, end string) entity.AvailabilitySlot {
	s := entity.AvailabilitySlot{
		ReviewerID: uuid.New(),
		Kind:       entity.SlotKindRecurring,
		DayOfWeek:  intPtr(day),
		StartTime:  start,
		EndTime:    end,
	}
	s.ID = uuid.New()
	return s
}

func specificSlot(date time.Time, start, end string) entity.AvailabilitySlot {
	s := entity.AvailabilitySlot{
		ReviewerID:   uuid.New(),
		Kind:         entity.SlotKindSpecific,
		SpecificDate: &date,
		StartTime:    start,
		EndTime:      end,
	}
	s.ID = uuid.New()
	return s
}

func window(t *testing.T, start, end string) timegrid.Window {
	t.Helper()
	st, err := timegrid.ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	en, err := timegrid.ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("parse %q: %v", end, err)
	}
	return timegrid.Window{Start: st, End: en}
}

func assertWindows(t *testing.T, got []entity.BookableWindow, want []timegrid.Window) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Window.Start.Equal(want[i].Start) || !got[i].Window.End.Equal(want[i].End) {
			t.Errorf("window %d: got %s, want %s", i, got[i].Window, want[i])
		}
	}
}

func TestResolveDaySubtractsBreaksAndBookings(t *testing.T) {
	slot := recurringSlot(1, "09:00", "12:00")
	breaks := []entity.BreakBlock{{
		ReviewerID: slot.ReviewerID,
		DayOfWeek:  1,
		StartTime:  "10:00",
		EndTime:    "10:30",
	}}
	busy := []timegrid.Window{window(t, "11:00", "11:30")}

	got, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{slot}, breaks, busy, monday)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	assertWindows(t, got, []timegrid.Window{
		window(t, "09:00", "10:00"),
		window(t, "10:30", "11:00"),
		window(t, "11:30", "12:00"),
	})
	for i := range got {
		if got[i].SlotID != slot.ID {
			t.Errorf("fragment %d lost its slot id", i)
		}
	}
}

func TestResolveDayStatusOverride(t *testing.T) {
	slot := recurringSlot(1, "09:00", "12:00")

	for _, status := range []entity.ReviewerStatus{entity.ReviewerStatusBusy, entity.ReviewerStatusDoNotDisturb} {
		got, appErr := ResolveDay(status, []entity.AvailabilitySlot{slot}, nil, nil, monday)
		if appErr != nil {
			t.Fatalf("status %s: unexpected error: %v", status, appErr)
		}
		if len(got) != 0 {
			t.Errorf("status %s: expected no windows, got %v", status, got)
		}
	}
}

func TestResolveDaySpecificOverridesRecurring(t *testing.T) {
	recurring := recurringSlot(1, "09:00", "11:00")
	specific := specificSlot(monday, "09:00", "11:00")

	got, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{recurring, specific}, nil, nil, monday)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	assertWindows(t, got, []timegrid.Window{window(t, "09:00", "11:00")})
	if got[0].SlotID != specific.ID {
		t.Errorf("expected the specific slot to win the dedup, got %s", got[0].SlotID)
	}
}

func TestResolveDaySpecificOnOtherDateIgnored(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	specific := specificSlot(tuesday, "09:00", "11:00")

	got, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{specific}, nil, nil, monday)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(got) != 0 {
		t.Errorf("expected no windows, got %v", got)
	}
}

func TestResolveDayBreakOnOtherWeekdayIgnored(t *testing.T) {
	slot := recurringSlot(1, "09:00", "12:00")
	breaks := []entity.BreakBlock{{
		DayOfWeek: 2,
		StartTime: "09:00",
		EndTime:   "12:00",
	}}

	got, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{slot}, breaks, nil, monday)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	assertWindows(t, got, []timegrid.Window{window(t, "09:00", "12:00")})
}

func TestResolveDayOverlappingStoredSlots(t *testing.T) {
	a := recurringSlot(1, "09:00", "11:00")
	b := recurringSlot(1, "10:00", "12:00")

	_, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{a, b}, nil, nil, monday)
	if appErr == nil {
		t.Fatal("expected an error for overlapping stored slots")
	}
	if appErr.Code != errors.ErrInternalInconsistency {
		t.Errorf("got code %s, want %s", appErr.Code, errors.ErrInternalInconsistency)
	}
}

func TestResolveDayMalformedStoredTime(t *testing.T) {
	slot := recurringSlot(1, "nine", "12:00")

	_, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{slot}, nil, nil, monday)
	if appErr == nil {
		t.Fatal("expected an error for a malformed stored time")
	}
	if appErr.Code != errors.ErrInternalInconsistency {
		t.Errorf("got code %s, want %s", appErr.Code, errors.ErrInternalInconsistency)
	}
}

func TestResolveDayFullyBooked(t *testing.T) {
	slot := recurringSlot(1, "09:00", "10:00")
	busy := []timegrid.Window{window(t, "09:00", "10:00")}

	got, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{slot}, nil, busy, monday)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(got) != 0 {
		t.Errorf("expected no windows, got %v", got)
	}
}

func TestResolveDaySortsAcrossSlots(t *testing.T) {
	late := recurringSlot(1, "14:00", "16:00")
	early := recurringSlot(1, "09:00", "10:00")

	got, appErr := ResolveDay(entity.ReviewerStatusAvailable,
		[]entity.AvailabilitySlot{late, early}, nil, nil, monday)
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	assertWindows(t, got, []timegrid.Window{
		window(t, "09:00", "10:00"),
		window(t, "14:00", "16:00"),
	})
}
