package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"review-scheduler/modules/notification/dto"
	"review-scheduler/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeNotificationService struct {
	created []*dto.CreateNotificationRequest
}

func (f *fakeNotificationService) Create(_ context.Context, req *dto.CreateNotificationRequest) error {
	f.created = append(f.created, req)
	return nil
}

func TestProcessBookingNoticeFansOut(t *testing.T) {
	svc := &fakeNotificationService{}
	h := &Handler{Notifications: svc}

	notice := BookingNotice{
		Event:       entity.TypeBookingCreated,
		ReviewID:    uuid.New(),
		Ref:         "RV-A1B2C3D4",
		StudentID:   uuid.New(),
		ReviewerID:  uuid.New(),
		AdvisorID:   uuid.New(),
		ScheduledAt: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		Week:        7,
	}
	task, err := NewBookingNoticeTask(notice)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.ProcessBookingNotice(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(svc.created) != 2 {
		t.Fatalf("got %d notifications, want 2 (reviewer and student)", len(svc.created))
	}
	got := map[uuid.UUID]bool{}
	for _, n := range svc.created {
		got[n.UserID] = true
		if n.Type != entity.TypeBookingCreated {
			t.Errorf("got type %s, want %s", n.Type, entity.TypeBookingCreated)
		}
		if !strings.Contains(n.Title, notice.Ref) {
			t.Errorf("title %q should carry the ref", n.Title)
		}
	}
	if !got[notice.ReviewerID] || !got[notice.StudentID] {
		t.Error("expected the reviewer and the student as recipients")
	}
	if got[notice.AdvisorID] {
		t.Error("the advisor raised the booking and should not be notified")
	}
}

func TestProcessBookingNoticeBadPayload(t *testing.T) {
	h := &Handler{Notifications: &fakeNotificationService{}}
	task := asynq.NewTask(TypeBookingNotice, []byte("{not json"))

	err := h.ProcessBookingNotice(context.Background(), task)
	if err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}
