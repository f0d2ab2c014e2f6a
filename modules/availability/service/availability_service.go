package service

import (
	"context"
	"fmt"
	"time"

	"review-scheduler/core/controller"
	"review-scheduler/core/errors"
	"review-scheduler/core/logger"
	"review-scheduler/core/timegrid"
	"review-scheduler/modules/availability/dto"
	"review-scheduler/modules/availability/entity"
	"review-scheduler/modules/availability/repository"

	"github.com/google/uuid"
)

// AvailabilityServiceInterface is the Availability Store contract:
// reviewer-owned CRUD over slots, breaks and status, plus the raw
// per-date pattern the scheduling façade resolves against.
type AvailabilityServiceInterface interface {
	CreateSlot(ctx context.Context, reviewerID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError)
	DeleteSlot(ctx context.Context, reviewerID, slotID uuid.UUID) *errors.AppError
	CreateBreak(ctx context.Context, reviewerID uuid.UUID, req *dto.CreateBreakRequest) (*dto.BreakResponse, *errors.AppError)
	DeleteBreak(ctx context.Context, reviewerID, breakID uuid.UUID) *errors.AppError
	SetStatus(ctx context.Context, reviewerID uuid.UUID, status string) *errors.AppError
	GetPattern(ctx context.Context, reviewerID uuid.UUID) (*dto.PatternResponse, *errors.AppError)
	DayPattern(ctx context.Context, reviewerID uuid.UUID, date time.Time) (*DayPatternResult, *errors.AppError)
}

// DayPatternResult is the raw material the resolver works on.
type DayPatternResult struct {
	Status entity.ReviewerStatus
	Slots  []entity.AvailabilitySlot
	Breaks []entity.BreakBlock
}

type AvailabilityService struct {
	repo repository.AvailabilityRepositoryInterface
}

func NewAvailabilityService(repo repository.AvailabilityRepositoryInterface) AvailabilityServiceInterface {
	return &AvailabilityService{repo: repo}
}

func (s *AvailabilityService) CreateSlot(ctx context.Context, reviewerID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	logger.Info("AvailabilityService:CreateSlot:Start", "reviewer_id", reviewerID, "type", req.AvailabilityType)

	slot := &entity.AvailabilitySlot{
		ReviewerID: reviewerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	window, appErr := validateWindow(req.StartTime, req.EndTime)
	if appErr != nil {
		return nil, appErr
	}

	switch entity.SlotKind(req.AvailabilityType) {
	case entity.SlotKindRecurring:
		if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "dayOfWeek must be 0-6 for recurring slots",
				controller.NewValidationError("dayOfWeek", "required, 0 (Sunday) to 6 (Saturday)"))
		}
		slot.Kind = entity.SlotKindRecurring
		slot.DayOfWeek = req.DayOfWeek
	case entity.SlotKindSpecific:
		date, err := time.Parse(time.DateOnly, req.SpecificDate)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "specificDate must be YYYY-MM-DD for specific slots",
				controller.NewValidationError("specificDate", "required, format YYYY-MM-DD"))
		}
		slot.Kind = entity.SlotKindSpecific
		slot.SpecificDate = &date
	default:
		return nil, errors.NewAppError(errors.ErrInvalidInput, "availabilityType must be \"recurring\" or \"specific\"", nil)
	}

	existing, err := s.repo.ListSlotsByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load existing slots", err)
	}

	if appErr := checkSlotConflicts(slot, window, existing); appErr != nil {
		return nil, appErr
	}

	created, err := s.repo.CreateSlot(ctx, slot)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create availability slot", err)
	}

	resp := dto.ToSlotResponse(created)
	return &resp, nil
}

// checkSlotConflicts enforces the no-overlap invariant at creation
// time. A specific slot covering the exact same window as a recurring
// one on the matching weekday is the designed override and is allowed;
// any partial overlap on a shared effective day is an error.
func checkSlotConflicts(newSlot *entity.AvailabilitySlot, window timegrid.Window, existing []entity.AvailabilitySlot) *errors.AppError {
	for i := range existing {
		other := &existing[i]
		otherWindow, err := other.Window()
		if err != nil {
			return errors.NewAppError(errors.ErrInternalInconsistency,
				"stored availability slot has a malformed time range", err.Error())
		}

		if !shareEffectiveDay(newSlot, other) {
			continue
		}

		identical := window.Start.Equal(otherWindow.Start) && window.End.Equal(otherWindow.End)
		if identical && newSlot.Kind != other.Kind {
			// Specific-over-recurring override (or its inverse order of
			// creation). The resolver dedups this pair at read time.
			continue
		}
		if window.Overlaps(otherWindow) {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("slot %s overlaps existing slot %s", window, otherWindow), nil)
		}
	}
	return nil
}

// shareEffectiveDay reports whether two slots can cover the same
// calendar date.
func shareEffectiveDay(a, b *entity.AvailabilitySlot) bool {
	switch {
	case a.Kind == entity.SlotKindRecurring && b.Kind == entity.SlotKindRecurring:
		return *a.DayOfWeek == *b.DayOfWeek
	case a.Kind == entity.SlotKindSpecific && b.Kind == entity.SlotKindSpecific:
		ay, am, ad := a.SpecificDate.Date()
		by, bm, bd := b.SpecificDate.Date()
		return ay == by && am == bm && ad == bd
	case a.Kind == entity.SlotKindRecurring && b.Kind == entity.SlotKindSpecific:
		return *a.DayOfWeek == int(b.SpecificDate.Weekday())
	case a.Kind == entity.SlotKindSpecific && b.Kind == entity.SlotKindRecurring:
		return int(a.SpecificDate.Weekday()) == *b.DayOfWeek
	}
	return false
}

func (s *AvailabilityService) DeleteSlot(ctx context.Context, reviewerID, slotID uuid.UUID) *errors.AppError {
	deleted, err := s.repo.DeleteSlot(ctx, slotID, reviewerID)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete availability slot", err)
	}
	if !deleted {
		return errors.NewAppError(errors.ErrNotFound, "Availability slot not found", nil)
	}
	return nil
}

func (s *AvailabilityService) CreateBreak(ctx context.Context, reviewerID uuid.UUID, req *dto.CreateBreakRequest) (*dto.BreakResponse, *errors.AppError) {
	if _, appErr := validateWindow(req.StartTime, req.EndTime); appErr != nil {
		return nil, appErr
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "dayOfWeek must be 0-6",
			controller.NewValidationError("dayOfWeek", "0 (Sunday) to 6 (Saturday)"))
	}

	brk := &entity.BreakBlock{
		ReviewerID: reviewerID,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if req.Label != "" {
		brk.Label = &req.Label
	}

	created, err := s.repo.CreateBreak(ctx, brk)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create break block", err)
	}

	resp := dto.ToBreakResponse(created)
	return &resp, nil
}

func (s *AvailabilityService) DeleteBreak(ctx context.Context, reviewerID, breakID uuid.UUID) *errors.AppError {
	deleted, err := s.repo.DeleteBreak(ctx, breakID, reviewerID)
	if err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete break block", err)
	}
	if !deleted {
		return errors.NewAppError(errors.ErrNotFound, "Break block not found", nil)
	}
	return nil
}

func (s *AvailabilityService) SetStatus(ctx context.Context, reviewerID uuid.UUID, status string) *errors.AppError {
	st := entity.ReviewerStatus(status)
	if !st.Valid() {
		return errors.NewAppError(errors.ErrInvalidInput, "status must be \"available\", \"busy\" or \"dnd\"", nil)
	}

	if err := s.repo.SetStatus(ctx, reviewerID, st); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to update reviewer status", err)
	}

	logger.Info("AvailabilityService:SetStatus", "reviewer_id", reviewerID, "status", status)
	return nil
}

func (s *AvailabilityService) GetPattern(ctx context.Context, reviewerID uuid.UUID) (*dto.PatternResponse, *errors.AppError) {
	slots, err := s.repo.ListSlotsByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load availability slots", err)
	}
	breaks, err := s.repo.ListBreaksByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load break blocks", err)
	}
	status, err := s.repo.GetStatus(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load reviewer status", err)
	}

	resp := &dto.PatternResponse{
		Slots:  make([]dto.SlotResponse, 0, len(slots)),
		Breaks: make([]dto.BreakResponse, 0, len(breaks)),
		Status: string(status),
	}
	for i := range slots {
		resp.Slots = append(resp.Slots, dto.ToSlotResponse(&slots[i]))
	}
	for i := range breaks {
		resp.Breaks = append(resp.Breaks, dto.ToBreakResponse(&breaks[i]))
	}
	return resp, nil
}

func (s *AvailabilityService) DayPattern(ctx context.Context, reviewerID uuid.UUID, date time.Time) (*DayPatternResult, *errors.AppError) {
	status, err := s.repo.GetStatus(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load reviewer status", err)
	}
	slots, err := s.repo.ListSlotsByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load availability slots", err)
	}
	breaks, err := s.repo.ListBreaksByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load break blocks", err)
	}

	return &DayPatternResult{Status: status, Slots: slots, Breaks: breaks}, nil
}

func validateWindow(start, end string) (timegrid.Window, *errors.AppError) {
	st, err := timegrid.ParseTimeOfDay(start)
	if err != nil {
		return timegrid.Window{}, errors.NewAppError(errors.ErrInvalidInput, "invalid startTime",
			controller.NewValidationError("startTime", err.Error()))
	}
	en, err := timegrid.ParseTimeOfDay(end)
	if err != nil {
		return timegrid.Window{}, errors.NewAppError(errors.ErrInvalidInput, "invalid endTime",
			controller.NewValidationError("endTime", err.Error()))
	}
	w, err := timegrid.NewWindow(st, en)
	if err != nil {
		return timegrid.Window{}, errors.NewAppError(errors.ErrInvalidInput, "endTime must be after startTime",
			controller.NewValidationError("endTime", err.Error()))
	}
	return w, nil
}
