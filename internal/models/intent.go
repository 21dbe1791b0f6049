// internal/models/intent.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

type IntentName string

const (
	IntentGreeting          IntentName = "GreetingIntent"
	IntentThankYou          IntentName = "ThankYouIntent"
	IntentDiningSuggestions IntentName = "DiningSuggestionsIntent"
	IntentRepeatSearch      IntentName = "RepeatSearchIntent"
)

var ErrUnsupportedIntent = errors.New("INTENT_NOT_SUPPORTED")

// ParseIntentName maps an engine intent name onto the closed set of intents
// this bot handles.
func ParseIntentName(name string) (IntentName, error) {
	switch n := IntentName(name); n {
	case IntentGreeting, IntentThankYou, IntentDiningSuggestions, IntentRepeatSearch:
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedIntent, name)
}

// Slot names as configured on the bot.
const (
	SlotCuisine        = "Cuisine"
	SlotNumberOfPeople = "NumberOfPeople"
	SlotLocation       = "Location"
	SlotDiningDate     = "DiningDate"
	SlotDiningTime     = "DiningTime"
	SlotEmail          = "Email"
)

type SlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue,omitempty"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

type Slot struct {
	Shape string     `json:"shape,omitempty"`
	Value *SlotValue `json:"value,omitempty"`
}

// Slots is keyed by slot name. The engine sends null for unfilled slots.
type Slots map[string]*Slot

func (s Slots) value(name string) *SlotValue {
	if s == nil {
		return nil
	}
	slot, ok := s[name]
	if !ok || slot == nil {
		return nil
	}
	return slot.Value
}

// Present reports whether the user has supplied anything for the slot.
func (s Slots) Present(name string) bool {
	v := s.value(name)
	return v != nil && (strings.TrimSpace(v.InterpretedValue) != "" || strings.TrimSpace(v.OriginalValue) != "")
}

func (s Slots) Interpreted(name string) string {
	if v := s.value(name); v != nil {
		return v.InterpretedValue
	}
	return ""
}

func (s Slots) Original(name string) string {
	if v := s.value(name); v != nil {
		return v.OriginalValue
	}
	return ""
}

// InterpretedOrUnknown returns the interpreted value or the "Unknown" placeholder.
func (s Slots) InterpretedOrUnknown(name string) string {
	return OrUnknown(s.Interpreted(name))
}
