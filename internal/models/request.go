// internal/models/request.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnknownValue is the placeholder for request fields the user never supplied.
const UnknownValue = "Unknown"

// PartySize is the number of diners. Zero means unknown and is encoded as
// the "Unknown" placeholder on the wire.
type PartySize int

// ParsePartySize converts a slot value into a party size, returning zero
// when the value is missing or not a number.
func ParsePartySize(s string) PartySize {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return PartySize(n)
}

func (p PartySize) Known() bool {
	return p > 0
}

func (p PartySize) String() string {
	if !p.Known() {
		return UnknownValue
	}
	return strconv.Itoa(int(p))
}

func (p PartySize) MarshalJSON() ([]byte, error) {
	if !p.Known() {
		return json.Marshal(UnknownValue)
	}
	return json.Marshal(int(p))
}

// UnmarshalJSON accepts a number, a numeric string or a placeholder string.
func (p *PartySize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("party size: %w", err)
		}
		*p = ParsePartySize(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("party size: %w", err)
	}
	if f < 0 {
		f = 0
	}
	*p = PartySize(int(f))
	return nil
}

// RecommendationRequest is the queue message produced by a completed dialog.
type RecommendationRequest struct {
	Location   string    `json:"Location"`
	Cuisine    string    `json:"Cuisine"`
	DiningTime string    `json:"DiningTime"`
	DiningDate string    `json:"DiningDate"`
	PartySize  PartySize `json:"NumberOfPeople"`
	Email      string    `json:"Email"`
}

// Enqueueable reports whether the request satisfies the queue invariant:
// cuisine and email are always known.
func (r *RecommendationRequest) Enqueueable() error {
	if !isKnown(r.Cuisine) {
		return fmt.Errorf("cuisine is required")
	}
	if !isKnown(r.Email) {
		return fmt.Errorf("email is required")
	}
	return nil
}

func isKnown(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != UnknownValue
}

// OrUnknown returns v, or the placeholder when v is empty.
func OrUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return UnknownValue
	}
	return v
}
