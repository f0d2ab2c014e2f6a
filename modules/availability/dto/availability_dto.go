package dto

import (
	"time"

	"review-scheduler/modules/availability/entity"
)

// CreateSlotRequest covers both slot kinds; availabilityType selects
// which of dayOfWeek / specificDate is required.
type CreateSlotRequest struct {
	AvailabilityType string `json:"availabilityType"` // "recurring" | "specific"
	DayOfWeek        *int   `json:"dayOfWeek,omitempty"`
	SpecificDate     string `json:"specificDate,omitempty"` // YYYY-MM-DD
	StartTime        string `json:"startTime"`              // HH:MM
	EndTime          string `json:"endTime"`
}

type CreateBreakRequest struct {
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Label     string `json:"label,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"` // "available" | "busy" | "dnd"
}

type SlotResponse struct {
	ID               string `json:"id"`
	AvailabilityType string `json:"availabilityType"`
	DayOfWeek        *int   `json:"dayOfWeek,omitempty"`
	SpecificDate     string `json:"specificDate,omitempty"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
}

type BreakResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Label     string `json:"label,omitempty"`
}

// PatternResponse is the reviewer's own availability page payload.
type PatternResponse struct {
	Slots  []SlotResponse  `json:"slots"`
	Breaks []BreakResponse `json:"breaks"`
	Status string          `json:"status"`
}

func ToSlotResponse(s *entity.AvailabilitySlot) SlotResponse {
	resp := SlotResponse{
		ID:               s.ID.String(),
		AvailabilityType: string(s.Kind),
		DayOfWeek:        s.DayOfWeek,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
	}
	if s.SpecificDate != nil {
		resp.SpecificDate = s.SpecificDate.Format(time.DateOnly)
	}
	return resp
}

func ToBreakResponse(b *entity.BreakBlock) BreakResponse {
	resp := BreakResponse{
		ID:        b.ID.String(),
		DayOfWeek: b.DayOfWeek,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
	if b.Label != nil {
		resp.Label = *b.Label
	}
	return resp
}
