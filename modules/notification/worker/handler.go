package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"review-scheduler/core/logger"
	"review-scheduler/modules/notification/dto"
	"review-scheduler/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// NotificationCreator is the slice of the notification service the
// worker needs.
type NotificationCreator interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) error
}

// Handler turns queued booking notices into one stored notification per
// participant.
type Handler struct {
	Notifications NotificationCreator
}

func NewHandler(notifications NotificationCreator) *Handler {
	return &Handler{Notifications: notifications}
}

// Register attaches handlers to the asynq mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBookingNotice, h.ProcessBookingNotice)
}

func (h *Handler) ProcessBookingNotice(ctx context.Context, t *asynq.Task) error {
	var notice BookingNotice
	if err := json.Unmarshal(t.Payload(), &notice); err != nil {
		return fmt.Errorf("unmarshal booking notice: %w: %w", err, asynq.SkipRetry)
	}

	title, message := noticeContent(notice)
	data := map[string]interface{}{
		"review_id": notice.ReviewID.String(),
		"ref":       notice.Ref,
		"event":     notice.Event,
	}

	for _, recipient := range recipients(notice) {
		req := &dto.CreateNotificationRequest{
			UserID:  recipient,
			Title:   title,
			Message: message,
			Type:    notice.Event,
			Data:    data,
		}
		if err := h.Notifications.Create(ctx, req); err != nil {
			logger.Error("Worker:ProcessBookingNotice", err)
			return err
		}
	}

	logger.Info("Worker:ProcessBookingNotice:Done", "event", notice.Event, "ref", notice.Ref)
	return nil
}

// recipients picks who hears about the event. The actor is excluded
// where the event implies them.
func recipients(n BookingNotice) []uuid.UUID {
	switch n.Event {
	case entity.TypeBookingCreated:
		return []uuid.UUID{n.ReviewerID, n.StudentID}
	case entity.TypeBookingAccepted, entity.TypeBookingRejected:
		return []uuid.UUID{n.AdvisorID, n.StudentID}
	default:
		return []uuid.UUID{n.StudentID, n.ReviewerID, n.AdvisorID}
	}
}

func noticeContent(n BookingNotice) (string, string) {
	when := n.ScheduledAt.Format(time.RFC1123)
	switch n.Event {
	case entity.TypeBookingCreated:
		return "New review request " + n.Ref,
			fmt.Sprintf("A week %d review has been requested for %s.", n.Week, when)
	case entity.TypeBookingAccepted:
		return "Review " + n.Ref + " accepted",
			fmt.Sprintf("The reviewer accepted the session scheduled for %s.", when)
	case entity.TypeBookingRejected:
		return "Review " + n.Ref + " rejected",
			fmt.Sprintf("The reviewer declined this session: %s", n.Reason)
	case entity.TypeBookingRescheduled:
		return "Review " + n.Ref + " rescheduled",
			fmt.Sprintf("The session has been moved to %s.", when)
	case entity.TypeBookingCancelled:
		return "Review " + n.Ref + " cancelled",
			fmt.Sprintf("The session was cancelled: %s", n.Reason)
	case entity.TypeBookingCompleted:
		return "Review " + n.Ref + " completed",
			"The session has been marked as completed."
	}
	return "Review " + n.Ref + " updated", "The booking " + n.Ref + " changed."
}
