package service

import (
	"context"
	"testing"
	"time"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

func windowCreate(start, end time.Time) *model.RequestCreate {
	return &model.RequestCreate{
		Title:           "Quarterly review",
		Organizer:       "Dana",
		WindowStart:     &start,
		WindowEnd:       &end,
		SlotDurationMin: 30,
	}
}

func TestCreate_GeneratesSlotsFromWindow(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	detail, err := env.requests.Create(context.Background(), windowCreate(start, end))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(detail.Slots) != 6 {
		t.Fatalf("expected 6 slots for a 3h window at 30min, got %d", len(detail.Slots))
	}
	for i, slot := range detail.Slots {
		wantStart := start.Add(time.Duration(i) * 30 * time.Minute)
		if !slot.StartTime.Equal(wantStart) {
			t.Errorf("slot %d: expected start %v, got %v", i, wantStart, slot.StartTime)
		}
		if slot.EndTime.Sub(slot.StartTime) != 30*time.Minute {
			t.Errorf("slot %d: expected 30min duration, got %v", i, slot.EndTime.Sub(slot.StartTime))
		}
		if slot.Status != model.SlotStatusAvailable {
			t.Errorf("slot %d: expected available, got %s", i, slot.Status)
		}
		if slot.RequestID != detail.Request.ID {
			t.Errorf("slot %d: not linked to request", i)
		}
	}

	if detail.Request.Status != model.RequestStatusOpen {
		t.Errorf("expected open request, got %s", detail.Request.Status)
	}
	if detail.Request.MaxSelectionsPerPerson != env.cfg.DefaultMaxSelections {
		t.Errorf("expected default max selections %d, got %d",
			env.cfg.DefaultMaxSelections, detail.Request.MaxSelectionsPerPerson)
	}
}

func TestCreate_GeneratesSlotsWithGap(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	input := windowCreate(start, start.Add(3*time.Hour))
	input.GapMin = 15

	detail, err := env.requests.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00, 09:45, 10:30, 11:15; the next step at 12:00 no longer fits.
	if len(detail.Slots) != 4 {
		t.Fatalf("expected 4 slots with a 15min gap, got %d", len(detail.Slots))
	}
	for i := 1; i < len(detail.Slots); i++ {
		gap := detail.Slots[i].StartTime.Sub(detail.Slots[i-1].EndTime)
		if gap != 15*time.Minute {
			t.Errorf("expected 15min gap before slot %d, got %v", i, gap)
		}
	}
}

func TestCreate_ExplicitSlotsAndRecipients(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	detail, err := env.requests.Create(context.Background(), &model.RequestCreate{
		Title:      "1:1 rounds",
		Organizer:  "Dana",
		Recipients: []string{"alex@example.com", "sam@example.com", "kim@example.com"},
		Slots: []model.SlotInput{
			{StartTime: start, EndTime: start.Add(45 * time.Minute)},
			{StartTime: start.Add(time.Hour), EndTime: start.Add(time.Hour + 45*time.Minute)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duration derives from the first explicit slot when unspecified.
	if detail.Request.SlotDurationMin != 45 {
		t.Errorf("expected derived duration 45, got %d", detail.Request.SlotDurationMin)
	}

	if len(detail.Invites) != 3 {
		t.Fatalf("expected one invite per recipient, got %d", len(detail.Invites))
	}
	seen := make(map[string]bool)
	for _, invite := range detail.Invites {
		if invite.Token == "" {
			t.Error("invite issued without a token")
		}
		if seen[invite.Token] {
			t.Errorf("duplicate invite token %s", invite.Token)
		}
		seen[invite.Token] = true
		if invite.Recipient == "" {
			t.Error("recipient invite missing its recipient label")
		}
		if invite.Status != model.InviteStatusPending {
			t.Errorf("expected pending invite, got %s", invite.Status)
		}
	}
}

func TestCreate_NoRecipientsIssuesSingleShareableInvite(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	detail, err := env.requests.Create(context.Background(), windowCreate(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Invites) != 1 {
		t.Fatalf("expected a single shareable invite, got %d", len(detail.Invites))
	}
	if detail.Invites[0].Recipient != "" {
		t.Errorf("shareable invite must be anonymous, got recipient %q", detail.Invites[0].Recipient)
	}
}

func TestCreate_WindowTooSmall(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	_, err := env.requests.Create(context.Background(), windowCreate(start, start.Add(10*time.Minute)))
	if code := claimCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, code)
	}
}

func TestCreate_MissingTitle(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	input := windowCreate(start, start.Add(time.Hour))
	input.Title = ""

	_, err := env.requests.Create(context.Background(), input)
	if code := claimCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestCreate_SlotDurationMismatch(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	_, err := env.requests.Create(context.Background(), &model.RequestCreate{
		Title:           "Mixed durations",
		Organizer:       "Dana",
		SlotDurationMin: 30,
		Slots: []model.SlotInput{
			{StartTime: start, EndTime: start.Add(30 * time.Minute)},
			{StartTime: start.Add(time.Hour), EndTime: start.Add(time.Hour + 45*time.Minute)},
		},
	})
	if code := claimCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	request, _ := env.seedRequest(1, [][2]time.Time{slotAt(base, 0, 30)}, 1)

	first, err := env.requests.Close(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if first.Status != model.RequestStatusClosed {
		t.Errorf("expected closed, got %s", first.Status)
	}
	if first.ClosedAt == nil {
		t.Fatal("expected closed_at to be set")
	}

	second, err := env.requests.Close(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if !second.ClosedAt.Equal(*first.ClosedAt) {
		t.Error("second close must not move closed_at")
	}
}

func TestClose_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.requests.Close(context.Background(), newID())
	if code := claimCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestDelete_CascadesSlotsAndInvites(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	request, invites := env.seedRequest(1, [][2]time.Time{slotAt(base, 0, 30)}, 2)

	if err := env.requests.Delete(context.Background(), request.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(env.store.slots) != 0 {
		t.Errorf("expected slots deleted, %d remain", len(env.store.slots))
	}
	if len(env.store.invites) != 0 {
		t.Errorf("expected invites deleted, %d remain", len(env.store.invites))
	}

	// Tokens stop resolving immediately.
	_, err := env.booking.ListSlots(context.Background(), invites[0].Token)
	if code := claimCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected %s, got %s", apperrors.CodeNotFound, code)
	}
}

func TestGetByID_IncludesSlotsAndInvites(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	request, _ := env.seedRequest(2, [][2]time.Time{
		slotAt(base, 0, 30),
		slotAt(base, 60, 90),
	}, 2)

	detail, err := env.requests.GetByID(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Slots) != 2 || len(detail.Invites) != 2 {
		t.Fatalf("expected 2 slots and 2 invites, got %d and %d", len(detail.Slots), len(detail.Invites))
	}
	// Organizer channel includes tokens.
	for _, invite := range detail.Invites {
		if invite.Token == "" {
			t.Error("organizer view must include invite tokens")
		}
	}
}

func TestGetAll_Paginates(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		env.seedRequest(1, [][2]time.Time{slotAt(base.Add(time.Duration(i)*time.Hour), 0, 30)}, 1)
	}

	requests, total, err := env.requests.GetAll(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(requests) != 3 {
		t.Errorf("expected page of 3, got %d", len(requests))
	}
}

func TestListBookings_JoinsClaimants(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	request, invites := env.seedRequest(1, [][2]time.Time{
		slotAt(base, 0, 30),
		slotAt(base, 60, 90),
	}, 1)

	slots := env.slotsByStart(request.ID)
	if _, err := env.booking.Claim(context.Background(), invites[0].Token, validClaim(slots[0].ID)); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	records, total, err := env.requests.ListBookings(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 booking, got %d", total)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.RequestTitle != request.Title {
		t.Errorf("expected title %q, got %q", request.Title, record.RequestTitle)
	}
	if record.InviteID != invites[0].ID {
		t.Errorf("expected invite %s, got %s", invites[0].ID, record.InviteID)
	}
	if record.Details.Email != "alex@example.com" {
		t.Errorf("expected claimant email, got %q", record.Details.Email)
	}
	if record.ClaimedAt == nil {
		t.Error("expected claimed_at on the record")
	}
}
