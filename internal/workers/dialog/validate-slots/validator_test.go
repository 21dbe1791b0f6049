// internal/workers/dialog/validate-slots/validator_test.go
package validateslots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dining-concierge/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// 2024-01-02 12:00 in the reference zone.
var fixedNow = time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC)

func newTestValidator(now time.Time) *Validator {
	return New(WithClock(func() time.Time { return now }))
}

func slot(value string) *models.Slot {
	return &models.Slot{Value: &models.SlotValue{OriginalValue: value, InterpretedValue: value}}
}

func rawSlot(original, interpreted string) *models.Slot {
	return &models.Slot{Value: &models.SlotValue{OriginalValue: original, InterpretedValue: interpreted}}
}

// ==========================
// Per-slot rules
// ==========================

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name  string
		slots models.Slots
		want  Outcome
	}{
		{
			name:  "no slots filled",
			slots: models.Slots{},
			want:  Outcome{Valid: true},
		},
		{
			name:  "nil slots from the engine are absent",
			slots: models.Slots{models.SlotCuisine: nil, models.SlotLocation: {}},
			want:  Outcome{Valid: true},
		},
		{
			name:  "cuisine is case-insensitive",
			slots: models.Slots{models.SlotCuisine: slot("Italian")},
			want:  Outcome{Valid: true},
		},
		{
			name:  "unsupported cuisine",
			slots: models.Slots{models.SlotCuisine: slot("french")},
			want:  Outcome{ViolatedSlot: models.SlotCuisine, Message: MsgUnsupportedCuisine},
		},
		{
			name:  "party size lower bound",
			slots: models.Slots{models.SlotNumberOfPeople: slot("1")},
			want:  Outcome{Valid: true},
		},
		{
			name:  "party size upper bound",
			slots: models.Slots{models.SlotNumberOfPeople: slot("20")},
			want:  Outcome{Valid: true},
		},
		{
			name:  "party size zero",
			slots: models.Slots{models.SlotNumberOfPeople: slot("0")},
			want:  Outcome{ViolatedSlot: models.SlotNumberOfPeople, Message: MsgPartySizeRange},
		},
		{
			name:  "party size too large",
			slots: models.Slots{models.SlotNumberOfPeople: slot("21")},
			want:  Outcome{ViolatedSlot: models.SlotNumberOfPeople, Message: MsgPartySizeRange},
		},
		{
			name:  "party size not a number",
			slots: models.Slots{models.SlotNumberOfPeople: slot("a few")},
			want:  Outcome{ViolatedSlot: models.SlotNumberOfPeople, Message: MsgPartySizeNumber},
		},
		{
			name:  "supported location",
			slots: models.Slots{models.SlotLocation: slot("NYC")},
			want:  Outcome{Valid: true},
		},
		{
			name:  "unsupported location",
			slots: models.Slots{models.SlotLocation: slot("Brooklyn")},
			want:  Outcome{ViolatedSlot: models.SlotLocation, Message: MsgUnsupportedArea},
		},
		{
			name:  "date today",
			slots: models.Slots{models.SlotDiningDate: slot("2024-01-02")},
			want:  Outcome{Valid: true},
		},
		{
			name:  "date in the past",
			slots: models.Slots{models.SlotDiningDate: slot("2024-01-01")},
			want:  Outcome{ViolatedSlot: models.SlotDiningDate, Message: MsgDateInPast},
		},
		{
			name:  "date unparsable",
			slots: models.Slots{models.SlotDiningDate: rawSlot("someday", "")},
			want:  Outcome{ViolatedSlot: models.SlotDiningDate, Message: MsgDateUnparsable},
		},
		{
			name:  "bare digits time is ambiguous",
			slots: models.Slots{models.SlotDiningTime: rawSlot("5", "05:00")},
			want: Outcome{
				ViolatedSlot: models.SlotDiningTime,
				Message:      "You said 5. Did you mean 5 AM or 5 PM?",
			},
		},
		{
			name: "time earlier today has passed",
			slots: models.Slots{
				models.SlotDiningDate: slot("2024-01-02"),
				models.SlotDiningTime: rawSlot("11 am", "11:00"),
			},
			want: Outcome{ViolatedSlot: models.SlotDiningTime, Message: MsgTimePassed},
		},
		{
			name: "time equal to now is accepted",
			slots: models.Slots{
				models.SlotDiningDate: slot("2024-01-02"),
				models.SlotDiningTime: rawSlot("noon", "12:00"),
			},
			want: Outcome{Valid: true},
		},
		{
			name: "time later today",
			slots: models.Slots{
				models.SlotDiningDate: slot("2024-01-02"),
				models.SlotDiningTime: rawSlot("7 pm", "19:00"),
			},
			want: Outcome{Valid: true},
		},
		{
			name: "early time on a future date",
			slots: models.Slots{
				models.SlotDiningDate: slot("2024-01-03"),
				models.SlotDiningTime: rawSlot("11 am", "11:00"),
			},
			want: Outcome{Valid: true},
		},
		{
			name:  "time without a date is not compared to now",
			slots: models.Slots{models.SlotDiningTime: rawSlot("1 am", "01:00")},
			want:  Outcome{Valid: true},
		},
		{
			name:  "time unparsable",
			slots: models.Slots{models.SlotDiningTime: rawSlot("seven-ish", "")},
			want:  Outcome{ViolatedSlot: models.SlotDiningTime, Message: MsgTimeUnparsable},
		},
		{
			name:  "time out of range",
			slots: models.Slots{models.SlotDiningTime: rawSlot("25 o'clock", "25:00")},
			want:  Outcome{ViolatedSlot: models.SlotDiningTime, Message: MsgTimeUnparsable},
		},
		{
			name: "all slots valid",
			slots: models.Slots{
				models.SlotCuisine:        slot("thai"),
				models.SlotNumberOfPeople: slot("4"),
				models.SlotLocation:       slot("manhattan"),
				models.SlotDiningDate:     slot("2024-01-05"),
				models.SlotDiningTime:     rawSlot("7 pm", "19:00"),
				models.SlotEmail:          slot("a@x.com"),
			},
			want: Outcome{Valid: true},
		},
	}

	v := newTestValidator(fixedNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.slots))
		})
	}
}

// ==========================
// Ordering and reference clock
// ==========================

func TestValidator_FirstViolationWins(t *testing.T) {
	v := newTestValidator(fixedNow)

	got := v.Validate(models.Slots{
		models.SlotDiningTime:     rawSlot("5", "05:00"),
		models.SlotLocation:       slot("boston"),
		models.SlotNumberOfPeople: slot("50"),
		models.SlotCuisine:        slot("french"),
	})
	assert.Equal(t, models.SlotCuisine, got.ViolatedSlot)

	got = v.Validate(models.Slots{
		models.SlotDiningTime:     rawSlot("5", "05:00"),
		models.SlotLocation:       slot("boston"),
		models.SlotNumberOfPeople: slot("50"),
	})
	assert.Equal(t, models.SlotNumberOfPeople, got.ViolatedSlot)

	got = v.Validate(models.Slots{
		models.SlotDiningTime: rawSlot("5", "05:00"),
		models.SlotDiningDate: slot("2023-12-31"),
	})
	assert.Equal(t, models.SlotDiningDate, got.ViolatedSlot)
}

func TestValidator_ReferenceDayUsesFixedOffset(t *testing.T) {
	// 03:00 UTC on the 3rd is still the evening of the 2nd at UTC-5.
	v := newTestValidator(time.Date(2024, 1, 3, 3, 0, 0, 0, time.UTC))

	assert.True(t, v.Validate(models.Slots{models.SlotDiningDate: slot("2024-01-02")}).Valid)

	got := v.Validate(models.Slots{
		models.SlotDiningDate: slot("2024-01-02"),
		models.SlotDiningTime: rawSlot("9 pm", "21:00"),
	})
	assert.Equal(t, Outcome{ViolatedSlot: models.SlotDiningTime, Message: MsgTimePassed}, got)
}

func TestNew_DefaultsToWallClock(t *testing.T) {
	v := New()
	today := time.Now().In(ReferenceZone).Format("2006-01-02")

	assert.True(t, v.Validate(models.Slots{models.SlotDiningDate: slot(today)}).Valid)
}
