package dto

import (
	"time"

	coreEntity "review-scheduler/core/entity"
	"review-scheduler/modules/availability/entity"
	schedentity "review-scheduler/modules/scheduling/entity"
)

type CreateReviewRequest struct {
	StudentID       string `json:"studentId"`
	ReviewerID      string `json:"reviewerId"`
	ScheduledAt     string `json:"scheduledAt"` // ISO-8601
	Mode            string `json:"mode"`        // "online" | "offline"
	Week            int    `json:"week"`
	DurationMinutes int    `json:"durationMinutes,omitempty"` // defaults from config
}

type RescheduleRequest struct {
	ReviewerID         string `json:"reviewerId,omitempty"` // empty keeps the current reviewer
	ScheduledAt        string `json:"scheduledAt"`
	NotifyParticipants bool   `json:"notifyParticipants"`
}

type CancelRequest struct {
	Reason             string `json:"reason"`
	NotifyParticipants bool   `json:"notifyParticipants"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// BookableSlotResponse is one free window on the requested date; id is
// the availability slot the window derives from.
type BookableSlotResponse struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`
}

type ReviewResponse struct {
	ID                 string  `json:"id"`
	Ref                string  `json:"ref"`
	StudentID          string  `json:"studentId"`
	ReviewerID         string  `json:"reviewerId"`
	AdvisorID          string  `json:"advisorId"`
	ScheduledAt        string  `json:"scheduledAt"`
	DurationMinutes    int     `json:"durationMinutes"`
	Mode               string  `json:"mode"`
	Week               int     `json:"week"`
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	RejectionReason    *string `json:"rejectionReason,omitempty"`
	CreatedAt          string  `json:"createdAt"`
}

type PaginatedReviewResponse = coreEntity.Pagination[ReviewResponse]

func ToBookableSlotResponses(windows []entity.BookableWindow) []BookableSlotResponse {
	out := make([]BookableSlotResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, BookableSlotResponse{
			ID:        w.SlotID.String(),
			StartTime: w.Window.Start.String(),
			EndTime:   w.Window.End.String(),
		})
	}
	return out
}

func ToReviewResponse(r *schedentity.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:                 r.ID.String(),
		Ref:                r.Ref,
		StudentID:          r.StudentID.String(),
		ReviewerID:         r.ReviewerID.String(),
		AdvisorID:          r.AdvisorID.String(),
		ScheduledAt:        r.ScheduledAt.Format(time.RFC3339),
		DurationMinutes:    r.DurationMinutes,
		Mode:               string(r.Mode),
		Week:               r.Week,
		Status:             string(r.Status),
		CancellationReason: r.CancellationReason,
		RejectionReason:    r.RejectionReason,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
}
