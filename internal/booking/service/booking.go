package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "slotbook/internal/booking/errors"
	"slotbook/internal/booking/repository"
	"slotbook/internal/booking/validator"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/kafka"
	"slotbook/pkg/metrics"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

const eventSource = "slotbook"

// BookingService is the public token-scoped surface: resolve a bearer token
// to its request, list slots, and atomically claim one.
type BookingService interface {
	ListSlots(ctx context.Context, token string) (*model.BookingView, error)
	Claim(ctx context.Context, token string, input *model.ClaimInput) (*model.ClaimResult, error)
}

// EventPublisher feeds the external notification collaborator. A nil
// publisher disables publishing without touching the claim path.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingService struct {
	requests  repository.RequestRepository
	slots     repository.SlotRepository
	invites   repository.InviteRepository
	locks     repository.ClaimLockRepository
	validator *validator.BookingValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewBookingService(
	requests repository.RequestRepository,
	slots repository.SlotRepository,
	invites repository.InviteRepository,
	locks repository.ClaimLockRepository,
	bookingValidator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		requests:  requests,
		slots:     slots,
		invites:   invites,
		locks:     locks,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ListSlots resolves the token and returns every slot of the request ordered
// by start time. A closed request still lists so the caller can render closed
// state; the status field carries that signal.
func (s *bookingService) ListSlots(ctx context.Context, token string) (*model.BookingView, error) {
	if token == "" {
		return nil, apperrors.InvalidInput("Token cannot be empty")
	}

	invite, err := s.resolveInvite(ctx, token)
	if err != nil {
		return nil, err
	}

	request, err := s.requests.FindByID(ctx, invite.RequestID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrRequestNotFound) {
			return nil, apperrors.NotFound("Booking request")
		}
		return nil, apperrors.Internal("Failed to retrieve booking request", err)
	}

	slots, err := s.slots.FindByRequest(ctx, request.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	view := &model.BookingView{
		RequestID:              request.ID,
		Title:                  request.Title,
		Description:            request.Description,
		Status:                 request.Status,
		SlotDurationMin:        request.SlotDurationMin,
		MaxSelectionsPerPerson: request.MaxSelectionsPerPerson,
		RemainingSelections:    max(0, request.MaxSelectionsPerPerson-invite.ClaimedCount),
		Recipient:              invite.Recipient,
		Slots:                  make([]model.SlotView, 0, len(slots)),
	}

	for _, slot := range slots {
		sv := model.SlotView{
			ID:          slot.ID,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Status:      slot.Status,
			ClaimedByMe: slot.ClaimedBy != "" && slot.ClaimedBy == invite.ID,
		}
		// Details only on the caller's own claims; other claimants stay
		// anonymous.
		if sv.ClaimedByMe {
			sv.Details = invite.Details
		}
		view.Slots = append(view.Slots, sv)
	}

	return view, nil
}

// Claim books one slot for the invite behind the token. The decision runs
// inside a serializable unit: a per-request advisory lock plus a Mongo
// multi-document transaction that re-resolves everything from transactional
// state. Of any set of concurrent attempts on overlapping slots, at most one
// commits.
func (s *bookingService) Claim(ctx context.Context, token string, input *model.ClaimInput) (*model.ClaimResult, error) {
	if token == "" {
		appErr := apperrors.InvalidInput("Token cannot be empty")
		s.recordOutcome(appErr)
		return nil, appErr
	}

	s.sanitizeClaim(input)
	if err := s.validator.ValidateClaim(input); err != nil {
		s.cfg.Log.Warn("Claim validation failed", "error", err)
		appErr := apperrors.Validation("Invalid claim input", map[string]any{"error": err.Error()})
		s.recordOutcome(appErr)
		return nil, appErr
	}

	// Resolve once outside the transaction only to learn which request to
	// lock; every check below re-reads from transactional state.
	invite, err := s.resolveInvite(ctx, token)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	lockID, err := s.acquireClaimLock(ctx, invite.RequestID)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}
	defer func() {
		// Release must outlive a canceled request context, otherwise the
		// request stays locked until the TTL fires and later claims see
		// spurious unavailability.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if releaseErr := s.locks.Release(releaseCtx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release claim lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var result *model.ClaimResult
	var event model.SlotClaimedEvent

	err = s.requests.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		invite, err := s.resolveInvite(sessCtx, token)
		if err != nil {
			return err
		}

		request, err := s.requests.FindByID(sessCtx, invite.RequestID)
		if err != nil {
			if errors.Is(err, bookingerrors.ErrRequestNotFound) {
				return apperrors.NotFound("Booking request")
			}
			return apperrors.Internal("Failed to retrieve booking request", err)
		}

		if request.Status != model.RequestStatusOpen {
			return apperrors.RequestClosed()
		}

		if invite.ClaimedCount >= request.MaxSelectionsPerPerson {
			return apperrors.QuotaExceeded(request.MaxSelectionsPerPerson)
		}

		slot, err := s.slots.FindByID(sessCtx, input.SlotID)
		if err != nil {
			if errors.Is(err, bookingerrors.ErrSlotNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
				return apperrors.NotFoundWithID("Slot", input.SlotID)
			}
			return apperrors.Internal("Failed to retrieve slot", err)
		}
		if slot.RequestID != request.ID {
			return apperrors.NotFoundWithID("Slot", input.SlotID)
		}

		if slot.Status != model.SlotStatusAvailable {
			return apperrors.SlotUnavailable()
		}

		// Overlap exclusion spans rows, so it has to run inside the
		// transaction; the CAS on this slot alone is not enough.
		overlapping, err := s.slots.CountBookedOverlapping(sessCtx, request.ID, slot.StartTime, slot.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check overlapping slots", err)
		}
		if overlapping > 0 {
			return apperrors.SlotUnavailable()
		}

		now := time.Now().UTC().Truncate(time.Millisecond)

		if err := s.slots.ClaimAvailable(sessCtx, slot.ID, invite.ID, now); err != nil {
			if errors.Is(err, bookingerrors.ErrSlotTaken) {
				return apperrors.SlotUnavailable()
			}
			return apperrors.Internal("Failed to book slot", err)
		}

		if err := s.invites.RecordClaim(sessCtx, invite.ID, input.ClaimDetails(), now); err != nil {
			return apperrors.Internal("Failed to update invite", err)
		}

		result = &model.ClaimResult{
			SlotID:    slot.ID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
		event = model.SlotClaimedEvent{
			RequestID:    request.ID,
			RequestTitle: request.Title,
			SlotID:       slot.ID,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
			InviteID:     invite.ID,
			Recipient:    invite.Recipient,
			ClaimantName: input.Name,
			ClaimedAt:    now,
		}
		return nil
	})
	if err != nil {
		// A transaction that kept aborting on write conflicts lost the
		// race; from the caller's view that is the same as the slot
		// being gone.
		if errors.Is(err, mongotx.ErrConflictRetriesExhausted) {
			err = apperrors.SlotUnavailable()
		} else if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Claim transaction failed", err)
		}
		s.recordOutcome(err)
		s.cfg.Log.Error("Claim failed", "slot_id", input.SlotID, "error", err)
		return nil, err
	}

	metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.cfg.Log.Info("Slot claimed",
		"request_id", event.RequestID,
		"slot_id", event.SlotID,
		"invite_id", event.InviteID,
		"start_time", event.StartTime,
	)

	s.publishClaimEvent(ctx, event)

	return result, nil
}

func (s *bookingService) resolveInvite(ctx context.Context, token string) (*model.Invite, error) {
	invite, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrInviteNotFound) {
			return nil, apperrors.NotFound("Invite")
		}
		return nil, apperrors.Internal("Failed to resolve invite token", err)
	}
	return invite, nil
}

// acquireClaimLock serializes claims per request. Contention is retried with
// jittered backoff; exhaustion surfaces as SlotUnavailable since the caller
// should refresh and re-pick either way.
func (s *bookingService) acquireClaimLock(ctx context.Context, requestID string) (string, error) {
	lockID := fmt.Sprintf("claim_lock_%s", requestID)

	backoff := retry.NewFibonacci(s.cfg.ClaimRetryBase)
	backoff = retry.WithJitter(s.cfg.ClaimRetryBase/2, backoff)
	backoff = retry.WithMaxRetries(uint64(s.cfg.ClaimRetryAttempts), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		lock := &model.ClaimLock{
			ID:        lockID,
			ExpiresAt: time.Now().UTC().Add(s.cfg.ClaimLockTTL),
		}
		if acquireErr := s.locks.Acquire(ctx, lock); acquireErr != nil {
			if errors.Is(acquireErr, bookingerrors.ErrLockHeld) {
				metrics.LockContentionTotal.Inc()
				return retry.RetryableError(acquireErr)
			}
			return acquireErr
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, bookingerrors.ErrLockHeld) {
			return "", apperrors.SlotUnavailable()
		}
		return "", apperrors.Internal("Failed to acquire claim lock", err)
	}

	return lockID, nil
}

// publishClaimEvent runs after commit only. Publishing is at-most-once and
// best-effort: a broker outage must not fail an already-committed claim.
func (s *bookingService) publishClaimEvent(ctx context.Context, event model.SlotClaimedEvent) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage(event.RequestID, model.EventSlotClaimed, eventSource, event)
	if err != nil {
		metrics.EventPublishFailures.Inc()
		s.cfg.Log.Error("Failed to encode claim event", "slot_id", event.SlotID, "error", err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, msg); err != nil {
		metrics.EventPublishFailures.Inc()
		s.cfg.Log.Error("Failed to publish claim event", "slot_id", event.SlotID, "error", err)
	}
}

func (s *bookingService) sanitizeClaim(input *model.ClaimInput) {
	input.Name = sanitizer.NormalizeName(input.Name)
	input.Email = sanitizer.NormalizeEmail(input.Email)
	input.Phone = sanitizer.NormalizePhone(input.Phone)
	input.Notes = sanitizer.NormalizeNotes(input.Notes)
}

func (s *bookingService) recordOutcome(err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return
	}

	switch appErr.Code {
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeValidation).Inc()
	case apperrors.CodeNotFound:
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
	case apperrors.CodeRequestClosed:
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeRequestClosed).Inc()
	case apperrors.CodeSlotUnavailable:
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeSlotUnavailable).Inc()
	case apperrors.CodeQuotaExceeded:
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeQuotaExceeded).Inc()
	default:
		metrics.ClaimsTotal.WithLabelValues(metrics.OutcomeError).Inc()
	}
}
