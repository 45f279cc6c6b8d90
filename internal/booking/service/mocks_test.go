package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "slotbook/internal/booking/errors"
	"slotbook/internal/booking/validator"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// fakeStore is an in-memory stand-in for the four collections. Transactions
// serialize on txMu, which is what gives the claim protocol the isolation the
// real store provides; individual reads and writes share mu.
type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	requests map[string]*model.BookingRequest
	slots    map[string]*model.Slot
	invites  map[string]*model.Invite
	locks    map[string]struct{}

	txErr  error
	txHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[string]*model.BookingRequest),
		slots:    make(map[string]*model.Slot),
		invites:  make(map[string]*model.Invite),
		locks:    make(map[string]struct{}),
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

type fakeRequestRepo struct{ s *fakeStore }

func (r *fakeRequestRepo) Create(ctx context.Context, request *model.BookingRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request.ID = newID()
	cp := *request
	r.s.requests[request.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) FindByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[id]
	if !ok {
		return nil, bookingerrors.ErrRequestNotFound
	}
	cp := *request
	return &cp, nil
}

func (r *fakeRequestRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*model.BookingRequest, 0, len(r.s.requests))
	for _, request := range r.s.requests {
		cp := *request
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeRequestRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.requests)), nil
}

func (r *fakeRequestRepo) Close(ctx context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[id]
	if !ok {
		return false, bookingerrors.ErrRequestNotFound
	}
	if request.Status != model.RequestStatusOpen {
		return false, nil
	}
	request.Status = model.RequestStatusClosed
	request.ClosedAt = &at
	return true, nil
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[id]; !ok {
		return bookingerrors.ErrRequestNotFound
	}
	delete(r.s.requests, id)
	return nil
}

func (r *fakeRequestRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	if r.s.txErr != nil {
		return r.s.txErr
	}
	if r.s.txHook != nil {
		r.s.txHook()
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeSlotRepo struct{ s *fakeStore }

func (r *fakeSlotRepo) CreateMany(ctx context.Context, slots []*model.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, slot := range slots {
		slot.ID = newID()
		cp := *slot
		r.s.slots[slot.ID] = &cp
	}
	return nil
}

func (r *fakeSlotRepo) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[id]
	if !ok {
		return nil, bookingerrors.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (r *fakeSlotRepo) FindByRequest(ctx context.Context, requestID string) ([]*model.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Slot
	for _, slot := range r.s.slots {
		if slot.RequestID == requestID {
			cp := *slot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeSlotRepo) CountBookedOverlapping(ctx context.Context, requestID string, start, end time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, slot := range r.s.slots {
		if slot.RequestID == requestID && slot.Status == model.SlotStatusBooked && slot.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSlotRepo) ClaimAvailable(ctx context.Context, slotID, inviteID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[slotID]
	if !ok || slot.Status != model.SlotStatusAvailable {
		return bookingerrors.ErrSlotTaken
	}
	slot.Status = model.SlotStatusBooked
	slot.ClaimedBy = inviteID
	slot.ClaimedAt = &at
	return nil
}

func (r *fakeSlotRepo) FindBooked(ctx context.Context, limit int, offset int64) ([]*model.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Slot
	for _, slot := range r.s.slots {
		if slot.Status == model.SlotStatusBooked {
			cp := *slot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSlotRepo) CountBooked(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, slot := range r.s.slots {
		if slot.Status == model.SlotStatusBooked {
			count++
		}
	}
	return count, nil
}

func (r *fakeSlotRepo) DeleteByRequest(ctx context.Context, requestID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, slot := range r.s.slots {
		if slot.RequestID == requestID {
			delete(r.s.slots, id)
		}
	}
	return nil
}

type fakeInviteRepo struct{ s *fakeStore }

func (r *fakeInviteRepo) CreateMany(ctx context.Context, invites []*model.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, invite := range invites {
		invite.ID = newID()
		cp := *invite
		r.s.invites[invite.ID] = &cp
	}
	return nil
}

func (r *fakeInviteRepo) FindByToken(ctx context.Context, token string) (*model.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, invite := range r.s.invites {
		if invite.Token == token {
			cp := *invite
			return &cp, nil
		}
	}
	return nil, bookingerrors.ErrInviteNotFound
}

func (r *fakeInviteRepo) FindByRequest(ctx context.Context, requestID string) ([]*model.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Invite
	for _, invite := range r.s.invites {
		if invite.RequestID == requestID {
			cp := *invite
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeInviteRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Invite
	for _, id := range ids {
		if invite, ok := r.s.invites[id]; ok {
			cp := *invite
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) RecordClaim(ctx context.Context, inviteID string, details *model.ClaimDetails, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	invite, ok := r.s.invites[inviteID]
	if !ok {
		return bookingerrors.ErrInviteNotFound
	}
	invite.Status = model.InviteStatusResponded
	invite.Details = details
	invite.ClaimedCount++
	invite.RespondedAt = &at
	return nil
}

func (r *fakeInviteRepo) DeleteByRequest(ctx context.Context, requestID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, invite := range r.s.invites {
		if invite.RequestID == requestID {
			delete(r.s.invites, id)
		}
	}
	return nil
}

type fakeLockRepo struct{ s *fakeStore }

func (r *fakeLockRepo) Acquire(ctx context.Context, lock *model.ClaimLock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, held := r.s.locks[lock.ID]; held {
		return bookingerrors.ErrLockHeld
	}
	r.s.locks[lock.ID] = struct{}{}
	return nil
}

func (r *fakeLockRepo) Release(ctx context.Context, lockID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.locks, lockID)
	return nil
}

type capturePublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (p *capturePublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *capturePublisher) messages() []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Message(nil), p.msgs...)
}

func newTestConfig() *config.Config {
	return &config.Config{
		ClaimLockTTL:           10 * time.Second,
		ClaimRetryAttempts:     5,
		ClaimRetryBase:         time.Millisecond,
		DefaultSlotDurationMin: 30,
		DefaultMaxSelections:   1,
		MaxSlotsPerRequest:     500,
		InviteTokenBytes:       32,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.FormatText,
			Service: "test",
		}),
	}
}

type testEnv struct {
	store     *fakeStore
	cfg       *config.Config
	publisher *capturePublisher
	booking   BookingService
	requests  RequestService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	cfg := newTestConfig()
	publisher := &capturePublisher{}
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	requestRepo := &fakeRequestRepo{s: store}
	slotRepo := &fakeSlotRepo{s: store}
	inviteRepo := &fakeInviteRepo{s: store}
	lockRepo := &fakeLockRepo{s: store}

	return &testEnv{
		store:     store,
		cfg:       cfg,
		publisher: publisher,
		booking: NewBookingService(
			requestRepo, slotRepo, inviteRepo, lockRepo,
			bookingValidator, publisher, cfg,
		),
		requests: NewRequestService(
			requestRepo, slotRepo, inviteRepo,
			bookingValidator, cfg,
		),
	}
}

// seedRequest inserts a request with the given slots directly into the store
// and returns the request plus one invite per requested count.
func (e *testEnv) seedRequest(maxSelections int, slotTimes [][2]time.Time, inviteCount int) (*model.BookingRequest, []*model.Invite) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	request := &model.BookingRequest{
		ID:                     newID(),
		Title:                  "Team sync",
		Organizer:              "Dana",
		SlotDurationMin:        30,
		MaxSelectionsPerPerson: maxSelections,
		Status:                 model.RequestStatusOpen,
		CreatedAt:              now,
	}
	e.store.requests[request.ID] = request

	for _, times := range slotTimes {
		slot := &model.Slot{
			ID:        newID(),
			RequestID: request.ID,
			StartTime: times[0],
			EndTime:   times[1],
			Status:    model.SlotStatusAvailable,
			CreatedAt: now,
		}
		e.store.slots[slot.ID] = slot
	}

	invites := make([]*model.Invite, 0, inviteCount)
	for i := 0; i < inviteCount; i++ {
		invite := &model.Invite{
			ID:        newID(),
			RequestID: request.ID,
			Token:     "token-" + newID(),
			Status:    model.InviteStatusPending,
			CreatedAt: now,
		}
		e.store.invites[invite.ID] = invite
		invites = append(invites, invite)
	}

	return request, invites
}

func (e *testEnv) slotsByStart(requestID string) []*model.Slot {
	slots, _ := (&fakeSlotRepo{s: e.store}).FindByRequest(context.Background(), requestID)
	return slots
}

func validClaim(slotID string) *model.ClaimInput {
	return &model.ClaimInput{
		SlotID: slotID,
		Name:   "Alex Doe",
		Email:  "alex@example.com",
		Phone:  "+15551234567",
	}
}
