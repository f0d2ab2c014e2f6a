package worker

import (
	"context"

	"review-scheduler/core/logger"
	schedEntity "review-scheduler/modules/scheduling/entity"

	"github.com/hibiken/asynq"
)

// AsynqNotifier enqueues booking lifecycle events for asynchronous
// fan-out, keeping notification writes off the request path.
type AsynqNotifier struct {
	Client *asynq.Client
}

func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{Client: client}
}

func (n *AsynqNotifier) BookingEvent(ctx context.Context, event string, review *schedEntity.Review) error {
	notice := BookingNotice{
		Event:       event,
		ReviewID:    review.ID,
		Ref:         review.Ref,
		StudentID:   review.StudentID,
		ReviewerID:  review.ReviewerID,
		AdvisorID:   review.AdvisorID,
		ScheduledAt: review.ScheduledAt,
		Mode:        string(review.Mode),
		Week:        review.Week,
	}
	if review.RejectionReason != nil {
		notice.Reason = *review.RejectionReason
	}
	if review.CancellationReason != nil {
		notice.Reason = *review.CancellationReason
	}

	task, err := NewBookingNoticeTask(notice)
	if err != nil {
		return err
	}

	info, err := n.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logger.Debug("AsynqNotifier:Enqueued", "event", event, "ref", review.Ref, "task_id", info.ID)
	return nil
}
