package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Conversation, error)
	GetByCycleAndEmployee(ctx context.Context, cycleID, employeeEmail string) (*Conversation, error)
	ListByEmployee(ctx context.Context, employeeEmail string) ([]*Conversation, error)
	Create(ctx context.Context, c *Conversation) (*Conversation, error)
	Update(ctx context.Context, c *Conversation) error
	DeleteForUser(ctx context.Context, email string) (int64, error)
	DeleteByCycle(ctx context.Context, cycleID string) (int64, error)
}

// UserDirectory is the slice of the identity store the engine needs:
// manager snapshots on creation and the direct-report relationship.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ListByManager(ctx context.Context, managerEmail string) ([]*user.User, error)
}

// CycleSource locates cycles. GetActive fails with a no-active-cycle
// error when none is active.
type CycleSource interface {
	GetActive(ctx context.Context) (*cycle.Cycle, error)
	GetByID(ctx context.Context, id string) (*cycle.Cycle, error)
	List(ctx context.Context) ([]*cycle.Cycle, error)
}

type Service struct {
	repo   Repository
	users  UserDirectory
	cycles CycleSource
	logger *slog.Logger
}

func NewService(repo Repository, users UserDirectory, cycles CycleSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, cycles: cycles, logger: logger}
}

// GetMine returns the actor's conversation for the active cycle,
// creating it on first access with the manager snapshotted from the
// actor's current identity record.
func (s *Service) GetMine(ctx context.Context, actor *auth.User) (*Conversation, error) {
	active, err := s.cycles.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.getOrCreate(ctx, active.ID, actor.Email, nil)
}

// UpdateMine applies an employee patch to the actor's conversation in
// the active cycle. Completed conversations reject employee edits.
func (s *Service) UpdateMine(ctx context.Context, actor *auth.User, dto EmployeeUpdateDTO) (*Conversation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	active, err := s.cycles.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	conv, err := s.repo.GetByCycleAndEmployee(ctx, active.ID, actor.Email)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, internal.ErrConversationNotFound
	}
	if conv.Locked() {
		return nil, internal.ErrConversationLocked
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&conv.ProgressOnPreviousGoals, dto.ProgressOnPreviousGoals)
	applyString(&conv.StatusSinceLastMeeting, dto.StatusSinceLastMeeting)
	applyString(&conv.NewGoals, dto.NewGoals)
	applyString(&conv.HowToAchieveGoals, dto.HowToAchieveGoals)
	applyString(&conv.SupportNeeded, dto.SupportNeeded)
	applyString(&conv.FeedbackAndWishes, dto.FeedbackAndWishes)
	if dto.Status != nil {
		conv.Status = *dto.Status
	}
	s.stamp(conv, actor.Email)

	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// History lists every conversation the actor has been the subject of,
// across all cycles, newest first.
func (s *Service) History(ctx context.Context, actor *auth.User) ([]*HistoryEntry, error) {
	return s.historyFor(ctx, actor.Email)
}

// GetForReport returns (lazily creating) a direct report's conversation
// for the active cycle, together with the report's identity record.
// Managers only reach their own reports; admins reach anyone. Anything
// out of scope reads as not-found so probes cannot confirm existence.
func (s *Service) GetForReport(ctx context.Context, actor *auth.User, employeeEmail string) (*ReportConversationResponse, error) {
	employee, err := s.authorizeReport(ctx, actor, employeeEmail)
	if err != nil {
		return nil, err
	}

	active, err := s.cycles.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	// When the report has no manager on file the acting user becomes
	// the snapshot, so the record stays reachable by whoever opened it.
	fallback := actor.Email
	conv, err := s.getOrCreate(ctx, active.ID, employee.Email, &fallback)
	if err != nil {
		return nil, err
	}

	return &ReportConversationResponse{Conversation: conv, Employee: employee}, nil
}

// UpdateForReport applies a manager patch. Managers may set any status,
// including reopening a completed review.
func (s *Service) UpdateForReport(ctx context.Context, actor *auth.User, employeeEmail string, dto ManagerUpdateDTO) (*Conversation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	employee, err := s.authorizeReport(ctx, actor, employeeEmail)
	if err != nil {
		return nil, err
	}
	active, err := s.cycles.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	conv, err := s.repo.GetByCycleAndEmployee(ctx, active.ID, employee.Email)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, internal.ErrConversationNotFound
	}

	if dto.ManagerFeedback != nil {
		conv.ManagerFeedback = *dto.ManagerFeedback
	}
	if dto.MeetingDate != nil {
		if *dto.MeetingDate == "" {
			conv.MeetingDate = nil
		} else {
			parsed, err := time.Parse("2006-01-02", *dto.MeetingDate)
			if err != nil {
				return nil, internal.NewValidationError("meeting_date must be formatted as YYYY-MM-DD", internal.ErrCodeValidationFailed)
			}
			conv.MeetingDate = &parsed
		}
	}
	if dto.RatingPerformance != nil {
		conv.RatingPerformance = dto.RatingPerformance
	}
	if dto.RatingCollaboration != nil {
		conv.RatingCollaboration = dto.RatingCollaboration
	}
	if dto.RatingGrowth != nil {
		conv.RatingGrowth = dto.RatingGrowth
	}
	if dto.Status != nil {
		conv.Status = *dto.Status
	}
	s.stamp(conv, actor.Email)

	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, err
	}

	s.logger.Info("manager updated conversation",
		"conversation_id", conv.ID,
		"employee_email", conv.EmployeeEmail,
		"status", conv.Status)
	return conv, nil
}

// HistoryForReport lists a direct report's conversations across cycles.
func (s *Service) HistoryForReport(ctx context.Context, actor *auth.User, employeeEmail string) ([]*HistoryEntry, error) {
	employee, err := s.authorizeReport(ctx, actor, employeeEmail)
	if err != nil {
		return nil, err
	}
	return s.historyFor(ctx, employee.Email)
}

// Reports lists the actor's direct reports with their conversation
// state in the active cycle. With no active cycle the list still
// returns, without conversation fields.
func (s *Service) Reports(ctx context.Context, actor *auth.User) ([]*ReportEntry, error) {
	reports, err := s.users.ListByManager(ctx, actor.Email)
	if err != nil {
		return nil, err
	}

	active, err := s.cycles.GetActive(ctx)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeNoActiveCycle {
			active = nil
		} else {
			return nil, err
		}
	}

	entries := make([]*ReportEntry, 0, len(reports))
	for _, report := range reports {
		entry := &ReportEntry{
			Email:      report.Email,
			Name:       report.Name,
			Department: report.Department,
		}
		if active != nil {
			conv, err := s.repo.GetByCycleAndEmployee(ctx, active.ID, report.Email)
			if err != nil {
				return nil, err
			}
			if conv != nil {
				entry.ConversationStatus = conv.Status
				entry.ConversationID = &conv.ID
			} else {
				entry.ConversationStatus = StatusNotStarted
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetByID fetches a conversation by id for the PDF export path. Access
// follows the snapshot: the subject, the snapshotted manager, or an
// admin. Everyone else sees not-found.
func (s *Service) GetByID(ctx context.Context, actor *auth.User, id string) (*Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, internal.ErrConversationNotFound
	}

	isOwner := auth.IsSelf(actor, conv.EmployeeEmail)
	isManager := auth.IsDirectManager(actor, conv.ManagerEmail)
	if !isOwner && !isManager && !actor.IsAdmin() {
		return nil, internal.ErrConversationNotFound
	}
	return conv, nil
}

// authorizeReport resolves the target employee and verifies the
// actor's claim on them. Out-of-scope targets read as not-found.
func (s *Service) authorizeReport(ctx context.Context, actor *auth.User, employeeEmail string) (*user.User, error) {
	email := auth.NormalizeEmail(employeeEmail)
	employee, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, internal.ErrUserNotFound
	}
	if actor.IsAdmin() {
		return employee, nil
	}
	if !auth.IsDirectManager(actor, employee.ManagerEmail) {
		return nil, internal.ErrUserNotFound
	}
	return employee, nil
}

// getOrCreate looks up the unique (cycle, employee) row and creates it
// if absent, snapshotting the employee's current manager link. The
// unique index resolves creation races: on conflict the winner's row
// is re-read and returned.
func (s *Service) getOrCreate(ctx context.Context, cycleID, employeeEmail string, fallbackManager *string) (*Conversation, error) {
	existing, err := s.repo.GetByCycleAndEmployee(ctx, cycleID, employeeEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var managerEmail *string
	employee, err := s.users.GetByEmail(ctx, employeeEmail)
	if err != nil {
		return nil, err
	}
	if employee != nil && employee.ManagerEmail != nil {
		managerEmail = employee.ManagerEmail
	} else {
		managerEmail = fallbackManager
	}

	now := time.Now().UTC()
	conv := &Conversation{
		ID:            uuid.New().String(),
		CycleID:       cycleID,
		EmployeeEmail: employeeEmail,
		ManagerEmail:  managerEmail,
		Status:        StatusNotStarted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, conv)
	if err != nil {
		return nil, err
	}

	s.logger.Info("conversation created",
		"conversation_id", created.ID,
		"cycle_id", cycleID,
		"employee_email", employeeEmail)
	return created, nil
}

func (s *Service) historyFor(ctx context.Context, employeeEmail string) ([]*HistoryEntry, error) {
	conversations, err := s.repo.ListByEmployee(ctx, employeeEmail)
	if err != nil {
		return nil, err
	}

	cycles, err := s.cycles.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]*cycle.Cycle, len(cycles))
	for _, c := range cycles {
		names[c.ID] = c
	}

	entries := make([]*HistoryEntry, 0, len(conversations))
	for _, conv := range conversations {
		entry := &HistoryEntry{Conversation: conv}
		if c, ok := names[conv.CycleID]; ok {
			entry.CycleName = c.Name
			entry.CycleStatus = c.Status
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) stamp(conv *Conversation, actorEmail string) {
	conv.UpdatedAt = time.Now().UTC()
	conv.UpdatedByEmail = actorEmail
}
