package errors

import "errors"

var (
	ErrRequestNotFound = errors.New("booking request not found")

	ErrSlotNotFound = errors.New("slot not found")

	ErrInviteNotFound = errors.New("invite not found")

	ErrInvalidID = errors.New("invalid ID format")

	// ErrLockHeld means another claim currently holds the per-request
	// advisory lock.
	ErrLockHeld = errors.New("claim lock held by another attempt")

	// ErrSlotTaken means the conditional available->booked update matched
	// nothing: the slot was booked between the availability check and the
	// write.
	ErrSlotTaken = errors.New("slot already booked")
)
