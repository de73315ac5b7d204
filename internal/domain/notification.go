package domain

import "time"

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationFailed    NotificationStatus = "failed"
	NotificationCancelled NotificationStatus = "cancelled"
)

type ReminderTiming string

const (
	RemindOneHour ReminderTiming = "1_hour"
	RemindOneDay  ReminderTiming = "1_day"
	RemindOneWeek ReminderTiming = "1_week"
)

func (t ReminderTiming) Valid() bool {
	switch t {
	case RemindOneHour, RemindOneDay, RemindOneWeek:
		return true
	}
	return false
}

func (t ReminderTiming) Offset() time.Duration {
	switch t {
	case RemindOneHour:
		return time.Hour
	case RemindOneWeek:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// EmailNotification is one scheduled reminder for a booking. Rows are never
// deleted: a cancelled or displaced booking leaves its notifications behind
// with status cancelled as an audit trail.
type EmailNotification struct {
	ID             string `gorm:"primaryKey"`
	BookingID      string `gorm:"index"`
	UserID         string `gorm:"index"`
	ScheduledAt    time.Time
	Status         NotificationStatus `gorm:"index"`
	ExternalID     string
	IdempotencyKey string `gorm:"uniqueIndex"`
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NotificationPreference is a user's reminder setting for one facility type.
type NotificationPreference struct {
	UserID      string      `gorm:"primaryKey"`
	BookingType BookingType `gorm:"primaryKey"`
	Enabled     bool
	Timing      ReminderTiming
}

// DefaultPreference applies when a user has never saved a setting for the
// facility type: reminders on, one day ahead.
func DefaultPreference(userID string, t BookingType) NotificationPreference {
	return NotificationPreference{UserID: userID, BookingType: t, Enabled: true, Timing: RemindOneDay}
}
