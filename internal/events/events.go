// Package events defines the payloads exchanged between the portal and the
// notification worker over the portal exchange.
package events

import (
	"encoding/json"
	"fmt"
)

const (
	RKBookingCreated   = "booking.created"
	RKBookingCancelled = "booking.cancelled"
	RKPrefsUpdated     = "user.preferences_updated"
)

type BookingCreated struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	BookingType string `json:"booking_type"`
	Start       int64  `json:"start"` // unix seconds
	End         int64  `json:"end"`
}

type BookingCancelled struct {
	BookingID string `json:"booking_id"`
}

type PreferencesUpdated struct {
	UserID string `json:"user_id"`
}

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
