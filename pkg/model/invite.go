package model

import (
	"time"
)

const (
	InviteStatusPending   = "pending"
	InviteStatusResponded = "responded"
)

// Invite is a bearer capability scoped to one request. The token is both the
// identifier and the credential on the public surface; possession is
// authorization. ClaimedCount is the authoritative quota counter even though
// it is derivable by scanning slot claim references.
type Invite struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty"`
	RequestID    string        `json:"request_id" bson:"request_id"`
	Token        string        `json:"token" bson:"token"`
	Recipient    string        `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Status       string        `json:"status" bson:"status"`
	ClaimedCount int           `json:"claimed_count" bson:"claimed_count"`
	Details      *ClaimDetails `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	RespondedAt  *time.Time    `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
}

// ClaimDetails are the claimant-supplied contact fields captured at the moment
// of the most recent claim. A later claim by the same invite overwrites them.
type ClaimDetails struct {
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" bson:"email" validate:"required,email,max=200"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Notes string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ClaimInput is the public claim payload.
type ClaimInput struct {
	SlotID string `json:"slot_id" validate:"required,mongodb"`
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Email  string `json:"email" validate:"required,email,max=200"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,e164"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Details extracts the contact fields from a claim payload.
func (in *ClaimInput) ClaimDetails() *ClaimDetails {
	return &ClaimDetails{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Notes: in.Notes,
	}
}
