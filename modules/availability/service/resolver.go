package service

import (
	"sort"
	"time"

	"review-scheduler/core/errors"
	"review-scheduler/core/timegrid"
	"review-scheduler/modules/availability/entity"

	"github.com/google/uuid"
)

// ResolveDay turns a reviewer's declared pattern into the concrete,
// conflict-free list of bookable windows for one calendar date.
//
// Resolution is lazy: nothing is materialized ahead of time, so slot
// edits, breaks and bookings can never drift out of sync. The cost is
// bounded by the reviewer's slot count for a single day.
func ResolveDay(
	status entity.ReviewerStatus,
	slots []entity.AvailabilitySlot,
	breaks []entity.BreakBlock,
	busy []timegrid.Window,
	date time.Time,
) ([]entity.BookableWindow, *errors.AppError) {
	// Status is a global override, not a per-slot filter.
	if status != entity.ReviewerStatusAvailable {
		return []entity.BookableWindow{}, nil
	}

	weekday := int(date.Weekday())

	// Collect candidates: recurring slots on this weekday plus
	// specific slots on this exact date. A specific slot declaring the
	// same wall-clock window as a recurring one is the designed
	// one-off override and wins the dedup.
	type candidate struct {
		slotID uuid.UUID
		kind   entity.SlotKind
		window timegrid.Window
	}
	byWindow := make(map[string]candidate)
	for i := range slots {
		s := &slots[i]
		if !s.AppliesTo(date) {
			continue
		}
		w, err := s.Window()
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalInconsistency,
				"stored availability slot has a malformed time range", err.Error())
		}
		key := w.String()
		if existing, ok := byWindow[key]; ok {
			if existing.kind == entity.SlotKindSpecific {
				continue
			}
		}
		byWindow[key] = candidate{slotID: s.ID, kind: s.Kind, window: w}
	}

	candidates := make([]candidate, 0, len(byWindow))
	for _, c := range byWindow {
		candidates = append(candidates, c)
	}

	// Stored slots overlapping after dedup violate the creation-time
	// invariant; surface, never silently coalesce.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[i].window.Overlaps(candidates[j].window) {
				return nil, errors.NewAppError(errors.ErrInternalInconsistency,
					"stored availability slots overlap",
					candidates[i].window.String()+" / "+candidates[j].window.String())
			}
		}
	}

	// Break windows for this weekday.
	var holes []timegrid.Window
	for i := range breaks {
		b := &breaks[i]
		if b.DayOfWeek != weekday {
			continue
		}
		w, err := b.Window()
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalInconsistency,
				"stored break block has a malformed time range", err.Error())
		}
		holes = append(holes, w)
	}
	holes = append(holes, busy...)

	// Subtract breaks and occupied windows; fragments keep the id of
	// the slot they came from.
	var result []entity.BookableWindow
	for _, c := range candidates {
		for _, frag := range c.window.Subtract(holes) {
			result = append(result, entity.BookableWindow{SlotID: c.slotID, Window: frag})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Window.Start.Before(result[j].Window.Start)
	})
	return result, nil
}
