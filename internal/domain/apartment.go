package domain

type Apartment struct {
	ID     string `gorm:"primaryKey"`
	Number string `gorm:"uniqueIndex"` // e.g. "1202"
	Floor  int
}
