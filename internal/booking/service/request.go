package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "slotbook/internal/booking/errors"
	"slotbook/internal/booking/repository"
	"slotbook/internal/booking/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"slotbook/pkg/token"
)

// RequestService is the organizer channel: publish requests, inspect them
// with tokens included, close them, and export bookings.
type RequestService interface {
	Create(ctx context.Context, input *model.RequestCreate) (*model.RequestDetail, error)
	GetByID(ctx context.Context, id string) (*model.RequestDetail, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, int64, error)
	Close(ctx context.Context, id string) (*model.BookingRequest, error)
	Delete(ctx context.Context, id string) error
	ListBookings(ctx context.Context, limit int, offset int64) ([]*model.BookingRecord, int64, error)
}

type requestService struct {
	requests  repository.RequestRepository
	slots     repository.SlotRepository
	invites   repository.InviteRepository
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewRequestService(
	requests repository.RequestRepository,
	slots repository.SlotRepository,
	invites repository.InviteRepository,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
) RequestService {
	return &requestService{
		requests:  requests,
		slots:     slots,
		invites:   invites,
		validator: bookingValidator,
		cfg:       cfg,
	}
}

// Create publishes a request: materializes its slots, issues one invite per
// recipient (or a single shareable invite when no recipients are named), and
// persists all three collections in one transaction.
func (s *requestService) Create(ctx context.Context, input *model.RequestCreate) (*model.RequestDetail, error) {
	s.sanitizeCreate(input)
	s.applyDefaults(input)

	if err := s.validator.ValidateRequestCreate(input); err != nil {
		s.cfg.Log.Warn("Request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	if len(input.Slots) > 0 {
		if err := s.validator.ValidateSlotDurations(input.Slots, input.SlotDurationMin); err != nil {
			return nil, apperrors.Validation("Invalid slot durations", map[string]any{"error": err.Error()})
		}
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	request := &model.BookingRequest{
		Title:                  input.Title,
		Description:            input.Description,
		Organizer:              input.Organizer,
		Recipients:             input.Recipients,
		SlotDurationMin:        input.SlotDurationMin,
		WindowStart:            input.WindowStart,
		WindowEnd:              input.WindowEnd,
		MaxSelectionsPerPerson: input.MaxSelectionsPerPerson,
		Status:                 model.RequestStatusOpen,
		CreatedAt:              now,
	}

	slots, err := s.buildSlots(input, now)
	if err != nil {
		return nil, err
	}

	invites, err := s.buildInvites(input.Recipients, now)
	if err != nil {
		return nil, err
	}

	err = s.requests.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.requests.Create(sessCtx, request); err != nil {
			return apperrors.Internal("Failed to create booking request", err)
		}
		for _, slot := range slots {
			slot.RequestID = request.ID
		}
		for _, invite := range invites {
			invite.RequestID = request.ID
		}
		if err := s.slots.CreateMany(sessCtx, slots); err != nil {
			return apperrors.Internal("Failed to create slots", err)
		}
		if err := s.invites.CreateMany(sessCtx, invites); err != nil {
			return apperrors.Internal("Failed to create invites", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Failed to publish booking request", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking request created",
		"request_id", request.ID,
		"slots", len(slots),
		"invites", len(invites),
	)

	return &model.RequestDetail{Request: request, Slots: slots, Invites: invites}, nil
}

// GetByID returns the organizer view of one request, invite tokens included.
func (s *requestService) GetByID(ctx context.Context, id string) (*model.RequestDetail, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrRequestNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking request", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking request", err)
	}

	slots, err := s.slots.FindByRequest(ctx, request.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	invites, err := s.invites.FindByRequest(ctx, request.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve invites", err)
	}

	return &model.RequestDetail{Request: request, Slots: slots, Invites: invites}, nil
}

func (s *requestService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg       sync.WaitGroup
		requests []*model.BookingRequest
		total    int64
		findErr  error
		countErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		requests, findErr = s.requests.FindAll(ctx, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.requests.Count(ctx)
	}()
	wg.Wait()

	if findErr != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve booking requests", findErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("Failed to count booking requests", countErr)
	}

	return requests, total, nil
}

// Close latches the request closed. Closing an already closed request is a
// no-op success; there is no way back to open.
func (s *requestService) Close(ctx context.Context, id string) (*model.BookingRequest, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	closed, err := s.requests.Close(ctx, id, now)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrRequestNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking request", id)
		}
		return nil, apperrors.Internal("Failed to close booking request", err)
	}

	if closed {
		s.cfg.Log.Info("Booking request closed", "request_id", id)
	}

	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve booking request", err)
	}
	return request, nil
}

// Delete removes a request and cascades to its slots and invites. Invite
// tokens stop resolving immediately.
func (s *requestService) Delete(ctx context.Context, id string) error {
	if _, err := s.requests.FindByID(ctx, id); err != nil {
		if errors.Is(err, bookingerrors.ErrRequestNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Booking request", id)
		}
		return apperrors.Internal("Failed to retrieve booking request", err)
	}

	err := s.requests.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.slots.DeleteByRequest(sessCtx, id); err != nil {
			return err
		}
		if err := s.invites.DeleteByRequest(sessCtx, id); err != nil {
			return err
		}
		return s.requests.Delete(sessCtx, id)
	})
	if err != nil {
		return apperrors.Internal("Failed to delete booking request", err)
	}

	s.cfg.Log.Info("Booking request deleted", "request_id", id)
	return nil
}

// ListBookings exports booked slots joined with their claimants across all
// requests, newest claims paginated by slot order.
func (s *requestService) ListBookings(ctx context.Context, limit int, offset int64) ([]*model.BookingRecord, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	booked, err := s.slots.FindBooked(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve booked slots", err)
	}

	total, err := s.slots.CountBooked(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	inviteIDs := make([]string, 0, len(booked))
	for _, slot := range booked {
		if slot.ClaimedBy != "" {
			inviteIDs = append(inviteIDs, slot.ClaimedBy)
		}
	}

	invitesByID := make(map[string]*model.Invite, len(inviteIDs))
	if len(inviteIDs) > 0 {
		invites, err := s.invites.FindByIDs(ctx, inviteIDs)
		if err != nil {
			return nil, 0, apperrors.Internal("Failed to retrieve claimants", err)
		}
		for _, invite := range invites {
			invitesByID[invite.ID] = invite
		}
	}

	requestsByID := make(map[string]*model.BookingRequest)
	records := make([]*model.BookingRecord, 0, len(booked))

	for _, slot := range booked {
		request, ok := requestsByID[slot.RequestID]
		if !ok {
			request, err = s.requests.FindByID(ctx, slot.RequestID)
			if err != nil {
				return nil, 0, apperrors.Internal("Failed to retrieve booking request", err)
			}
			requestsByID[slot.RequestID] = request
		}

		record := &model.BookingRecord{
			RequestID:    slot.RequestID,
			RequestTitle: request.Title,
			SlotID:       slot.ID,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
			InviteID:     slot.ClaimedBy,
			ClaimedAt:    slot.ClaimedAt,
		}
		if invite, ok := invitesByID[slot.ClaimedBy]; ok {
			record.Recipient = invite.Recipient
			if invite.Details != nil {
				record.Details = *invite.Details
			}
		}
		records = append(records, record)
	}

	return records, total, nil
}

// buildSlots materializes the request's slots. Explicit slots win; otherwise
// consecutive slots are generated from the window, stepping by duration plus
// gap.
func (s *requestService) buildSlots(input *model.RequestCreate, now time.Time) ([]*model.Slot, error) {
	var slots []*model.Slot

	if len(input.Slots) > 0 {
		slots = make([]*model.Slot, 0, len(input.Slots))
		for _, in := range input.Slots {
			slots = append(slots, &model.Slot{
				StartTime: in.StartTime.UTC(),
				EndTime:   in.EndTime.UTC(),
				Status:    model.SlotStatusAvailable,
				CreatedAt: now,
			})
		}
	} else {
		duration := time.Duration(input.SlotDurationMin) * time.Minute
		step := duration + time.Duration(input.GapMin)*time.Minute
		for start := input.WindowStart.UTC(); !start.Add(duration).After(input.WindowEnd.UTC()); start = start.Add(step) {
			slots = append(slots, &model.Slot{
				StartTime: start,
				EndTime:   start.Add(duration),
				Status:    model.SlotStatusAvailable,
				CreatedAt: now,
			})
			if len(slots) > s.cfg.MaxSlotsPerRequest {
				break
			}
		}
	}

	if len(slots) == 0 {
		return nil, apperrors.InvalidInput("Request window does not fit a single slot")
	}
	if len(slots) > s.cfg.MaxSlotsPerRequest {
		return nil, apperrors.Validation("Too many slots", map[string]any{
			"max_slots": s.cfg.MaxSlotsPerRequest,
		})
	}

	return slots, nil
}

// buildInvites issues one invite per named recipient, or a single anonymous
// shareable invite when the recipient list is empty.
func (s *requestService) buildInvites(recipients []string, now time.Time) ([]*model.Invite, error) {
	count := len(recipients)
	if count == 0 {
		count = 1
	}

	invites := make([]*model.Invite, 0, count)
	for i := 0; i < count; i++ {
		tok, err := token.New(s.cfg.InviteTokenBytes)
		if err != nil {
			return nil, apperrors.Internal("Failed to generate invite token", err)
		}
		invite := &model.Invite{
			Token:     tok,
			Status:    model.InviteStatusPending,
			CreatedAt: now,
		}
		if len(recipients) > 0 {
			invite.Recipient = recipients[i]
		}
		invites = append(invites, invite)
	}

	return invites, nil
}

func (s *requestService) applyDefaults(input *model.RequestCreate) {
	if input.SlotDurationMin == 0 {
		if len(input.Slots) > 0 {
			input.SlotDurationMin = int(input.Slots[0].EndTime.Sub(input.Slots[0].StartTime) / time.Minute)
		} else {
			input.SlotDurationMin = s.cfg.DefaultSlotDurationMin
		}
	}
	if input.MaxSelectionsPerPerson == 0 {
		input.MaxSelectionsPerPerson = s.cfg.DefaultMaxSelections
	}
}

func (s *requestService) sanitizeCreate(input *model.RequestCreate) {
	input.Title = sanitizer.TrimAndNormalize(input.Title)
	input.Description = sanitizer.NormalizeNotes(input.Description)
	input.Organizer = sanitizer.NormalizeName(input.Organizer)
	for i, recipient := range input.Recipients {
		input.Recipients[i] = sanitizer.TrimAndNormalize(recipient)
	}
}
