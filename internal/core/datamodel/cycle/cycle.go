package cycle

import "time"

// Cycle is the persistence model for review cycles.
type Cycle struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;not null"`
	StartDate time.Time `gorm:"column:start_date"`
	EndDate   time.Time `gorm:"column:end_date"`
	Status    string    `gorm:"column:status;not null;default:draft;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Cycle) TableName() string {
	return "cycles"
}
