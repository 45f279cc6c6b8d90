package model

import "time"

// EventSlotClaimed is the payload published after a claim commits. Consumers
// (notification dispatch, audit) receive it at most once per successful claim.
const EventSlotClaimed = "booking.slot_claimed"

type SlotClaimedEvent struct {
	RequestID    string    `json:"request_id"`
	RequestTitle string    `json:"request_title"`
	SlotID       string    `json:"slot_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	InviteID     string    `json:"invite_id"`
	Recipient    string    `json:"recipient,omitempty"`
	ClaimantName string    `json:"claimant_name"`
	ClaimedAt    time.Time `json:"claimed_at"`
}
