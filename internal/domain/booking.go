package domain

import "time"

type BookingType string

const (
	BookingLaundry BookingType = "laundry"
	BookingBBQ     BookingType = "bbq"
)

func (t BookingType) Valid() bool {
	return t == BookingLaundry || t == BookingBBQ
}

// Booking reserves one facility slot exclusively for a user. ApartmentID is
// copied from the owner at create time so apartment queries need no join.
// The unique index on (booking_type, start_time) is the authoritative guard
// against two racing requests winning the same slot; the engine's overlap
// check alone is only an optimistic pre-check.
type Booking struct {
	ID          string      `gorm:"primaryKey"`
	UserID      string      `gorm:"index"`
	ApartmentID string      `gorm:"index"`
	BookingType BookingType `gorm:"index;uniqueIndex:uniq_booking_type_start"`
	StartTime   time.Time   `gorm:"index;uniqueIndex:uniq_booking_type_start"`
	EndTime     time.Time
	CreatedAt   time.Time
}
