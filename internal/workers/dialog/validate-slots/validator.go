// internal/workers/dialog/validate-slots/validator.go
package validateslots

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/models"
)

const dateLayout = "2006-01-02"

// Validator checks partially filled DiningSuggestions slots. It is pure
// apart from the injected clock.
type Validator struct {
	now func() time.Time
}

type Option func(*Validator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type rule struct {
	slot  string
	check func(slots models.Slots, ref time.Time) (string, bool)
}

// rules run in this order; the first failure wins.
var rules = []rule{
	{models.SlotCuisine, checkCuisine},
	{models.SlotNumberOfPeople, checkPartySize},
	{models.SlotLocation, checkLocation},
	{models.SlotDiningDate, checkDate},
	{models.SlotDiningTime, checkTime},
}

// Validate evaluates the present slots and returns on the first violation.
// Absent slots are valid.
func (v *Validator) Validate(slots models.Slots) Outcome {
	ref := v.now().In(ReferenceZone)

	for _, r := range rules {
		if !slots.Present(r.slot) {
			continue
		}
		if msg, ok := r.check(slots, ref); !ok {
			metrics.SlotValidationFailures.WithLabelValues(r.slot).Inc()
			return invalid(r.slot, msg)
		}
	}
	return valid()
}

func checkCuisine(slots models.Slots, _ time.Time) (string, bool) {
	cuisine := strings.ToLower(slots.Interpreted(models.SlotCuisine))
	if !slices.Contains(SupportedCuisines, cuisine) {
		return MsgUnsupportedCuisine, false
	}
	return "", true
}

func checkPartySize(slots models.Slots, _ time.Time) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(slots.Interpreted(models.SlotNumberOfPeople)))
	if err != nil {
		return MsgPartySizeNumber, false
	}
	if n < MinPartySize || n > MaxPartySize {
		return MsgPartySizeRange, false
	}
	return "", true
}

func checkLocation(slots models.Slots, _ time.Time) (string, bool) {
	location := strings.ToLower(slots.Interpreted(models.SlotLocation))
	if !slices.Contains(SupportedLocations, location) {
		return MsgUnsupportedArea, false
	}
	return "", true
}

func checkDate(slots models.Slots, ref time.Time) (string, bool) {
	date, err := time.ParseInLocation(dateLayout, slots.Interpreted(models.SlotDiningDate), ReferenceZone)
	if err != nil {
		return MsgDateUnparsable, false
	}
	if date.Before(startOfDay(ref)) {
		return MsgDateInPast, false
	}
	return "", true
}

func checkTime(slots models.Slots, ref time.Time) (string, bool) {
	// Bare digits such as "5" are ambiguous before any parsing.
	raw := strings.TrimSpace(strings.ToLower(slots.Original(models.SlotDiningTime)))
	if isDigits(raw) {
		return fmt.Sprintf(MsgTimeAmbiguousFmt, raw, raw, raw), false
	}

	hour, minute, ok := parseClock(slots.Interpreted(models.SlotDiningTime))
	if !ok {
		return MsgTimeUnparsable, false
	}

	if slots.Present(models.SlotDiningDate) && slots.Interpreted(models.SlotDiningDate) == ref.Format(dateLayout) {
		dining := time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ReferenceZone)
		if dining.Before(ref) {
			return MsgTimePassed, false
		}
	}
	return "", true
}

// parseClock accepts 24-hour "HH:MM".
func parseClock(s string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
