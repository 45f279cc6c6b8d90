package model

import (
	"time"
)

const (
	RequestStatusOpen   = "open"
	RequestStatusClosed = "closed"
)

// BookingRequest is an organizer-defined set of bookable time slots. Invite
// tokens are scoped to exactly one request.
type BookingRequest struct {
	ID                     string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title                  string     `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description            string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Organizer              string     `json:"organizer" bson:"organizer" validate:"required,min=2,max=200"`
	Recipients             []string   `json:"recipients,omitempty" bson:"recipients,omitempty" validate:"omitempty,max=200,dive,min=2,max=200"`
	SlotDurationMin        int        `json:"slot_duration_min" bson:"slot_duration_min" validate:"required,min=5,max=1440"`
	WindowStart            *time.Time `json:"window_start,omitempty" bson:"window_start,omitempty"`
	WindowEnd              *time.Time `json:"window_end,omitempty" bson:"window_end,omitempty"`
	MaxSelectionsPerPerson int        `json:"max_selections_per_person" bson:"max_selections_per_person" validate:"required,min=1,max=50"`
	Status                 string     `json:"status" bson:"status" validate:"required,oneof=open closed"`
	CreatedAt              time.Time  `json:"created_at" bson:"created_at"`
	ClosedAt               *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// RequestCreate is the organizer payload for publishing a new request. Slots
// are either generated from the window and duration or supplied explicitly;
// explicit slots may overlap on purpose (the claim protocol resolves them).
type RequestCreate struct {
	Title                  string      `json:"title" validate:"required,min=2,max=200"`
	Description            string      `json:"description,omitempty" validate:"omitempty,max=2000"`
	Organizer              string      `json:"organizer" validate:"required,min=2,max=200"`
	Recipients             []string    `json:"recipients,omitempty" validate:"omitempty,max=200,dive,min=2,max=200"`
	SlotDurationMin        int         `json:"slot_duration_min,omitempty" validate:"omitempty,min=5,max=1440"`
	WindowStart            *time.Time  `json:"window_start,omitempty"`
	WindowEnd              *time.Time  `json:"window_end,omitempty"`
	GapMin                 int         `json:"gap_min,omitempty" validate:"omitempty,min=0,max=1440"`
	MaxSelectionsPerPerson int         `json:"max_selections_per_person,omitempty" validate:"omitempty,min=1,max=50"`
	Slots                  []SlotInput `json:"slots,omitempty" validate:"omitempty,max=500,dive"`
}

// SlotInput is one explicitly specified slot in a RequestCreate.
type SlotInput struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// RequestDetail is the organizer-channel view: the request with its slots and
// invites, tokens included.
type RequestDetail struct {
	Request *BookingRequest `json:"request"`
	Slots   []*Slot         `json:"slots"`
	Invites []*Invite       `json:"invites"`
}
