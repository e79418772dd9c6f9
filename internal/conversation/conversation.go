package conversation

import (
	"time"

	conversationDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/conversation"
)

// Conversation statuses. Employees may only move between InProgress and
// ReadyForManager; Completed is reachable (and reversible) only by the
// manager.
const (
	StatusNotStarted      = "not_started"
	StatusInProgress      = "in_progress"
	StatusReadyForManager = "ready_for_manager"
	StatusCompleted       = "completed"
)

const (
	RatingMin = 1
	RatingMax = 5
)

type Conversation struct {
	ID            string  `json:"id"`
	CycleID       string  `json:"cycle_id"`
	EmployeeEmail string  `json:"employee_email"`
	ManagerEmail  *string `json:"manager_email"`

	ProgressOnPreviousGoals string `json:"progress_on_previous_goals"`
	StatusSinceLastMeeting  string `json:"status_since_last_meeting"`
	NewGoals                string `json:"new_goals"`
	HowToAchieveGoals       string `json:"how_to_achieve_goals"`
	SupportNeeded           string `json:"support_needed"`
	FeedbackAndWishes       string `json:"feedback_and_wishes"`
	ManagerFeedback         string `json:"manager_feedback"`

	MeetingDate         *time.Time `json:"meeting_date"`
	RatingPerformance   *int       `json:"rating_performance"`
	RatingCollaboration *int       `json:"rating_collaboration"`
	RatingGrowth        *int       `json:"rating_growth"`

	Status         string    `json:"status"`
	UpdatedByEmail string    `json:"updated_by_email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusNotStarted, StatusInProgress, StatusReadyForManager, StatusCompleted:
		return true
	}
	return false
}

// EmployeeMaySet reports whether an employee-submitted status value is
// acceptable. Employees never set not_started or completed.
func EmployeeMaySet(status string) bool {
	return status == StatusInProgress || status == StatusReadyForManager
}

// Locked reports whether employee edits are rejected.
func (c *Conversation) Locked() bool {
	return c.Status == StatusCompleted
}

func ValidRating(r int) bool {
	return r >= RatingMin && r <= RatingMax
}

func ToDataModel(c *Conversation) *conversationDatamodel.Conversation {
	return &conversationDatamodel.Conversation{
		ID:                      c.ID,
		CycleID:                 c.CycleID,
		EmployeeEmail:           c.EmployeeEmail,
		ManagerEmail:            c.ManagerEmail,
		ProgressOnPreviousGoals: c.ProgressOnPreviousGoals,
		StatusSinceLastMeeting:  c.StatusSinceLastMeeting,
		NewGoals:                c.NewGoals,
		HowToAchieveGoals:       c.HowToAchieveGoals,
		SupportNeeded:           c.SupportNeeded,
		FeedbackAndWishes:       c.FeedbackAndWishes,
		ManagerFeedback:         c.ManagerFeedback,
		MeetingDate:             c.MeetingDate,
		RatingPerformance:       c.RatingPerformance,
		RatingCollaboration:     c.RatingCollaboration,
		RatingGrowth:            c.RatingGrowth,
		Status:                  c.Status,
		UpdatedByEmail:          c.UpdatedByEmail,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

func FromDataModel(m *conversationDatamodel.Conversation) *Conversation {
	return &Conversation{
		ID:                      m.ID,
		CycleID:                 m.CycleID,
		EmployeeEmail:           m.EmployeeEmail,
		ManagerEmail:            m.ManagerEmail,
		ProgressOnPreviousGoals: m.ProgressOnPreviousGoals,
		StatusSinceLastMeeting:  m.StatusSinceLastMeeting,
		NewGoals:                m.NewGoals,
		HowToAchieveGoals:       m.HowToAchieveGoals,
		SupportNeeded:           m.SupportNeeded,
		FeedbackAndWishes:       m.FeedbackAndWishes,
		ManagerFeedback:         m.ManagerFeedback,
		MeetingDate:             m.MeetingDate,
		RatingPerformance:       m.RatingPerformance,
		RatingCollaboration:     m.RatingCollaboration,
		RatingGrowth:            m.RatingGrowth,
		Status:                  m.Status,
		UpdatedByEmail:          m.UpdatedByEmail,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*conversationDatamodel.Conversation) []*Conversation {
	result := make([]*Conversation, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
