package model

import (
	"time"
)

const (
	SlotStatusAvailable = "available"
	SlotStatusBooked    = "booked"
)

// Slot is a fixed time range belonging to one request. Status is booked if
// and only if ClaimedBy is set; that transition happens exclusively through
// the claim protocol and is never reverted.
type Slot struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	RequestID string     `json:"request_id" bson:"request_id"`
	StartTime time.Time  `json:"start_time" bson:"start_time"`
	EndTime   time.Time  `json:"end_time" bson:"end_time"`
	Status    string     `json:"status" bson:"status"`
	ClaimedBy string     `json:"-" bson:"claimed_by,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty" bson:"claimed_at,omitempty"`
}

// Overlaps reports whether the slot's time range intersects [start, end).
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

// SlotView is the invite-scoped read of a slot. ClaimedByMe is derived at the
// read boundary by comparing the claim reference to the caller's invite and is
// never persisted. Details are attached only for the caller's own claims so
// other claimants' identities never leak.
type SlotView struct {
	ID          string        `json:"id"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Status      string        `json:"status"`
	ClaimedByMe bool          `json:"claimed_by_me"`
	Details     *ClaimDetails `json:"details,omitempty"`
}

// BookingView is the full token-resolved listing: request summary plus all of
// its slots ordered by start time.
type BookingView struct {
	RequestID              string     `json:"request_id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description,omitempty"`
	Status                 string     `json:"status"`
	SlotDurationMin        int        `json:"slot_duration_min"`
	MaxSelectionsPerPerson int        `json:"max_selections_per_person"`
	RemainingSelections    int        `json:"remaining_selections"`
	Recipient              string     `json:"recipient,omitempty"`
	Slots                  []SlotView `json:"slots"`
}

// ClaimResult is returned to a claimant on a successful claim.
type ClaimResult struct {
	SlotID    string    `json:"slot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BookingRecord is one booked slot joined with its claimant, the admin-export
// read shape.
type BookingRecord struct {
	RequestID    string       `json:"request_id"`
	RequestTitle string       `json:"request_title"`
	SlotID       string       `json:"slot_id"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      time.Time    `json:"end_time"`
	InviteID     string       `json:"invite_id"`
	Recipient    string       `json:"recipient,omitempty"`
	Details      ClaimDetails `json:"details"`
	ClaimedAt    *time.Time   `json:"claimed_at,omitempty"`
}
