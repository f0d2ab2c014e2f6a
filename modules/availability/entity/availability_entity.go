package entity

import (
	"time"

	"review-scheduler/core/entity"
	"review-scheduler/core/timegrid"

	"github.com/google/uuid"
)

type SlotKind string

const (
	SlotKindRecurring SlotKind = "recurring"
	SlotKindSpecific  SlotKind = "specific"
)

type ReviewerStatus string

const (
	ReviewerStatusAvailable    ReviewerStatus = "available"
	ReviewerStatusBusy         ReviewerStatus = "busy"
	ReviewerStatusDoNotDisturb ReviewerStatus = "dnd"
)

func (s ReviewerStatus) Valid() bool {
	switch s {
	case ReviewerStatusAvailable, ReviewerStatusBusy, ReviewerStatusDoNotDisturb:
		return true
	}
	return false
}

// AvailabilitySlot is one declared bookable window: either a weekly
// recurring pattern entry (DayOfWeek set) or a one-off entry for a
// single calendar date (SpecificDate set). Slots are never edited in
// place; owners delete and recreate them.
type AvailabilitySlot struct {
	ReviewerID   uuid.UUID  `db:"reviewer_id" json:"reviewer_id"`
	Kind         SlotKind   `db:"kind" json:"kind"`
	DayOfWeek    *int       `db:"day_of_week" json:"day_of_week,omitempty"` // 0 = Sunday
	SpecificDate *time.Time `db:"specific_date" json:"specific_date,omitempty"`
	StartTime    string     `db:"start_time" json:"start_time"` // "HH:MM"
	EndTime      string     `db:"end_time" json:"end_time"`
	entity.BaseEntity
}

// Window parses the stored time range.
func (s *AvailabilitySlot) Window() (timegrid.Window, error) {
	return parseWindow(s.StartTime, s.EndTime)
}

// AppliesTo reports whether the slot covers the given calendar date.
func (s *AvailabilitySlot) AppliesTo(date time.Time) bool {
	switch s.Kind {
	case SlotKindRecurring:
		return s.DayOfWeek != nil && *s.DayOfWeek == int(date.Weekday())
	case SlotKindSpecific:
		return s.SpecificDate != nil && sameDate(*s.SpecificDate, date)
	}
	return false
}

// BreakBlock is a weekly recurring unavailable window subtracted from
// every matching day's declared slots.
type BreakBlock struct {
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Label      *string   `db:"label" json:"label,omitempty"`
	entity.BaseEntity
}

func (b *BreakBlock) Window() (timegrid.Window, error) {
	return parseWindow(b.StartTime, b.EndTime)
}

// BookableWindow is one resolved free window, tagged with the slot
// that contributed it.
type BookableWindow struct {
	SlotID uuid.UUID       `json:"id"`
	Window timegrid.Window `json:"window"`
}

func parseWindow(start, end string) (timegrid.Window, error) {
	s, err := timegrid.ParseTimeOfDay(start)
	if err != nil {
		return timegrid.Window{}, err
	}
	e, err := timegrid.ParseTimeOfDay(end)
	if err != nil {
		return timegrid.Window{}, err
	}
	return timegrid.NewWindow(s, e)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
