package entity

import (
	"time"

	"review-scheduler/core/entity"
	"review-scheduler/core/timegrid"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"   // waiting for the reviewer to act
	ReviewStatusAccepted  ReviewStatus = "accepted"  // reviewer accepted the assignment
	ReviewStatusRejected  ReviewStatus = "rejected"  // reviewer declined, terminal
	ReviewStatusScheduled ReviewStatus = "scheduled" // confirmed and (re)placed on the calendar
	ReviewStatusCompleted ReviewStatus = "completed" // session held, terminal
	ReviewStatusCancelled ReviewStatus = "cancelled" // advisor cancelled, terminal
)

type ReviewMode string

const (
	ReviewModeOnline  ReviewMode = "online"
	ReviewModeOffline ReviewMode = "offline"
)

func (m ReviewMode) Valid() bool {
	return m == ReviewModeOnline || m == ReviewModeOffline
}

// transitions is the full lifecycle state machine. A pending booking
// may be rescheduled in place (pending -> pending); accepting promotes
// it to the calendar; a reschedule of an accepted booking lands it in
// scheduled.
var transitions = map[ReviewStatus]map[ReviewStatus]bool{
	ReviewStatusPending: {
		ReviewStatusPending:   true,
		ReviewStatusAccepted:  true,
		ReviewStatusRejected:  true,
		ReviewStatusCancelled: true,
	},
	ReviewStatusAccepted: {
		ReviewStatusScheduled: true,
		ReviewStatusCancelled: true,
		ReviewStatusCompleted: true,
	},
	ReviewStatusScheduled: {
		ReviewStatusScheduled: true,
		ReviewStatusCancelled: true,
		ReviewStatusCompleted: true,
	},
}

// CanTransition reports whether moving from s to next is legal.
func (s ReviewStatus) CanTransition(next ReviewStatus) bool {
	return transitions[s][next]
}

// IsTerminal reports whether no further transitions exist.
func (s ReviewStatus) IsTerminal() bool {
	switch s {
	case ReviewStatusRejected, ReviewStatusCompleted, ReviewStatusCancelled:
		return true
	}
	return false
}

// Occupies reports whether a booking in this status consumes its time
// window for availability resolution.
func (s ReviewStatus) Occupies() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusAccepted, ReviewStatusScheduled:
		return true
	}
	return false
}

// Review is one booking of a reviewer's window for a student's review
// session. Status mutations go through the scheduling service only.
type Review struct {
	Ref                string       `db:"ref" json:"ref"`
	StudentID          uuid.UUID    `db:"student_id" json:"student_id"`
	ReviewerID         uuid.UUID    `db:"reviewer_id" json:"reviewer_id"`
	AdvisorID          uuid.UUID    `db:"advisor_id" json:"advisor_id"`
	ScheduledAt        time.Time    `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes    int          `db:"duration_minutes" json:"duration_minutes"`
	Mode               ReviewMode   `db:"mode" json:"mode"`
	Week               int          `db:"week" json:"week"`
	Status             ReviewStatus `db:"status" json:"status"`
	CancellationReason *string      `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	RejectionReason    *string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	entity.BaseEntity
}

// Window is the day-local time window the booking occupies.
func (r *Review) Window() timegrid.Window {
	start := timegrid.FromClock(r.ScheduledAt)
	return timegrid.Window{Start: start, End: start.AddMinutes(r.DurationMinutes)}
}

// EndsAt is the absolute end of the session.
func (r *Review) EndsAt() time.Time {
	return r.ScheduledAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// InvolvesUser reports whether the user participates in the booking.
func (r *Review) InvolvesUser(id uuid.UUID) bool {
	return r.StudentID == id || r.ReviewerID == id || r.AdvisorID == id
}

type PaginatedReviewEntity = entity.Pagination[Review]
