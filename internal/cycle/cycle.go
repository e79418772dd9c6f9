package cycle

import (
	"time"

	cycleDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/cycle"
)

// Cycle statuses. Archived is terminal.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

type Cycle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether a cycle may move between two statuses.
// Archived cycles never leave that state.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusDraft:
		return to == StatusActive || to == StatusArchived
	case StatusActive:
		return to == StatusArchived
	}
	return false
}

func ToDataModel(c *Cycle) *cycleDatamodel.Cycle {
	return &cycleDatamodel.Cycle{
		ID:        c.ID,
		Name:      c.Name,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(m *cycleDatamodel.Cycle) *Cycle {
	return &Cycle{
		ID:        m.ID,
		Name:      m.Name,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*cycleDatamodel.Cycle) []*Cycle {
	result := make([]*Cycle, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
