package conversation

import (
	"time"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

// EmployeeUpdateDTO is a field-level patch: a nil pointer means "leave
// unchanged", a present value (including the empty string) overwrites.
type EmployeeUpdateDTO struct {
	ProgressOnPreviousGoals *string `json:"progress_on_previous_goals"`
	StatusSinceLastMeeting  *string `json:"status_since_last_meeting"`
	NewGoals                *string `json:"new_goals"`
	HowToAchieveGoals       *string `json:"how_to_achieve_goals"`
	SupportNeeded           *string `json:"support_needed"`
	FeedbackAndWishes       *string `json:"feedback_and_wishes"`
	Status                  *string `json:"status"`
}

func (d EmployeeUpdateDTO) Validate() error {
	if d.Status != nil && !EmployeeMaySet(*d.Status) {
		return internal.ErrInvalidTransition
	}
	return nil
}

// ManagerUpdateDTO patches the manager-authored fields. The meeting
// date arrives as a YYYY-MM-DD string; an empty string clears it.
type ManagerUpdateDTO struct {
	ManagerFeedback     *string `json:"manager_feedback"`
	MeetingDate         *string `json:"meeting_date"`
	RatingPerformance   *int    `json:"rating_performance"`
	RatingCollaboration *int    `json:"rating_collaboration"`
	RatingGrowth        *int    `json:"rating_growth"`
	Status              *string `json:"status"`
}

func (d ManagerUpdateDTO) Validate() error {
	if d.Status != nil && !ValidStatus(*d.Status) {
		return internal.NewValidationError("status must be one of not_started, in_progress, ready_for_manager, completed", internal.ErrCodeValidationFailed)
	}
	for _, r := range []*int{d.RatingPerformance, d.RatingCollaboration, d.RatingGrowth} {
		if r != nil && !ValidRating(*r) {
			return internal.NewValidationError("ratings must be between 1 and 5", internal.ErrCodeValidationFailed)
		}
	}
	if d.MeetingDate != nil && *d.MeetingDate != "" {
		if _, err := time.Parse("2006-01-02", *d.MeetingDate); err != nil {
			return internal.NewValidationError("meeting_date must be formatted as YYYY-MM-DD", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// ReportConversationResponse pairs a report's conversation with their
// identity record for the manager view.
type ReportConversationResponse struct {
	Conversation *Conversation `json:"conversation"`
	Employee     *user.User    `json:"employee"`
}

// HistoryEntry is a past conversation annotated with its cycle name.
type HistoryEntry struct {
	*Conversation
	CycleName   string `json:"cycle_name"`
	CycleStatus string `json:"cycle_status"`
}

// ReportEntry is one direct report in the manager's overview, with the
// state of their conversation in the active cycle.
type ReportEntry struct {
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	Department         string  `json:"department"`
	ConversationStatus string  `json:"conversation_status,omitempty"`
	ConversationID     *string `json:"conversation_id,omitempty"`
}
