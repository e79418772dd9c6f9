package conversation

import "time"

// Conversation is the persistence model for one review record. The unique
// index on (cycle_id, employee_email) is the backstop against duplicate lazy
// creation under concurrent requests.
type Conversation struct {
	ID            string  `gorm:"primaryKey;column:id"`
	CycleID       string  `gorm:"column:cycle_id;not null;uniqueIndex:idx_cycle_employee"`
	EmployeeEmail string  `gorm:"column:employee_email;not null;uniqueIndex:idx_cycle_employee"`
	ManagerEmail  *string `gorm:"column:manager_email;index"`

	ProgressOnPreviousGoals string `gorm:"column:progress_on_previous_goals"`
	StatusSinceLastMeeting  string `gorm:"column:status_since_last_meeting"`
	NewGoals                string `gorm:"column:new_goals"`
	HowToAchieveGoals       string `gorm:"column:how_to_achieve_goals"`
	SupportNeeded           string `gorm:"column:support_needed"`
	FeedbackAndWishes       string `gorm:"column:feedback_and_wishes"`
	ManagerFeedback         string `gorm:"column:manager_feedback"`

	MeetingDate         *time.Time `gorm:"column:meeting_date"`
	RatingPerformance   *int       `gorm:"column:rating_performance"`
	RatingCollaboration *int       `gorm:"column:rating_collaboration"`
	RatingGrowth        *int       `gorm:"column:rating_growth"`

	Status         string    `gorm:"column:status;not null;default:not_started"`
	UpdatedByEmail string    `gorm:"column:updated_by_email"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}
