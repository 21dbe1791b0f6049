// internal/workers/dialog/validate-slots/models.go
package validateslots

import "time"

const TaskType = "validate-slots"

// ReferenceZone is the fixed UTC-5 offset "today" and "now" are measured
// in. It does not follow daylight saving.
var ReferenceZone = time.FixedZone("UTC-5", -5*60*60)

var (
	SupportedCuisines  = []string{"indian", "italian", "japanese", "mexican", "chinese", "thai"}
	SupportedLocations = []string{"new york", "new york city", "nyc", "manhattan", "ny"}
)

const (
	MinPartySize = 1
	MaxPartySize = 20
)

const (
	MsgUnsupportedCuisine = "Sorry, we only support indian, italian, japanese, mexican, chinese, thai. Which of those would you like?"
	MsgPartySizeRange     = "Please enter a valid party size between 1 and 20."
	MsgPartySizeNumber    = "Please enter a valid number for your party size."
	MsgUnsupportedArea    = "I'm sorry, my database currently only has restaurants in New York City. Could you please say 'New York' or 'Manhattan'?"
	MsgDateInPast         = "You can't book a restaurant in the past! Please provide today's date or a future date."
	MsgDateUnparsable     = "I didn't quite catch that date. What day would you like to dine?"
	MsgTimeAmbiguousFmt   = "You said %s. Did you mean %s AM or %s PM?"
	MsgTimePassed         = "That time has already passed! What time later today would you like to eat?"
	MsgTimeUnparsable     = "I didn't understand that time. For example, you can say '7 PM'."
)

// Outcome is the result of validating the slots of one dialog turn. An
// invalid outcome names the first slot that failed and what to ask next.
type Outcome struct {
	Valid        bool   `json:"isValid"`
	ViolatedSlot string `json:"violatedSlot,omitempty"`
	Message      string `json:"message,omitempty"`
}

func valid() Outcome {
	return Outcome{Valid: true}
}

func invalid(slot, message string) Outcome {
	return Outcome{ViolatedSlot: slot, Message: message}
}
