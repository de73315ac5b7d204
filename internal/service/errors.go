package service

import "errors"

var (
	// ErrInvalidSlot: the requested window is not in the slot catalog.
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrPastBooking: the requested start time is not in the future.
	ErrPastBooking = errors.New("booking must start in the future")
	// ErrSlotConflict: another user already holds an overlapping booking.
	ErrSlotConflict = errors.New("slot already booked")
	// ErrInvalidPreference: unknown facility type or reminder timing.
	ErrInvalidPreference = errors.New("invalid notification preference")
	// ErrNotFound: lookup on a nonexistent record.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken: registration with an address that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials: unknown email or wrong password; deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
