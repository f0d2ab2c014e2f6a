package worker

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeBookingNotice = "notify:booking"

// BookingNotice is the queued payload for one lifecycle event. It
// carries everything the handler needs so processing never has to read
// the reviews table.
type BookingNotice struct {
	Event       string    `json:"event"`
	ReviewID    uuid.UUID `json:"review_id"`
	Ref         string    `json:"ref"`
	StudentID   uuid.UUID `json:"student_id"`
	ReviewerID  uuid.UUID `json:"reviewer_id"`
	AdvisorID   uuid.UUID `json:"advisor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Mode        string    `json:"mode"`
	Week        int       `json:"week"`
	Reason      string    `json:"reason,omitempty"`
}

func NewBookingNoticeTask(notice BookingNotice) (*asynq.Task, error) {
	payload, err := json.Marshal(notice)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingNotice, payload, asynq.MaxRetry(5)), nil
}
