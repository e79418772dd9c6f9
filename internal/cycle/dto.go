package cycle

import (
	"strings"
	"time"
)

type CreateCycleDTO struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type DeleteCycleResponse struct {
	ID                   string `json:"id"`
	ConversationsDeleted int64  `json:"conversations_deleted"`
}

type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

func (d CreateCycleDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return ValidationError{Msg: "start_date and end_date are required"}
	}
	if !d.EndDate.After(d.StartDate) {
		return ValidationError{Msg: "end_date must be after start_date"}
	}
	return nil
}
