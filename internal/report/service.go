package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/conversation"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

// ConversationSource resolves a conversation by id with access control
// already applied for the acting user.
type ConversationSource interface {
	GetByID(ctx context.Context, actor *auth.User, id string) (*conversation.Conversation, error)
}

type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type CycleSource interface {
	GetByID(ctx context.Context, id string) (*cycle.Cycle, error)
}

type Service struct {
	conversations ConversationSource
	users         UserDirectory
	cycles        CycleSource
	renderer      PDFRenderer
	logger        *slog.Logger
}

func NewService(conversations ConversationSource, users UserDirectory, cycles CycleSource, renderer PDFRenderer, logger *slog.Logger) *Service {
	return &Service{
		conversations: conversations,
		users:         users,
		cycles:        cycles,
		renderer:      renderer,
		logger:        logger,
	}
}

// Export renders a conversation the actor may read into a PDF.
func (s *Service) Export(ctx context.Context, actor *auth.User, conversationID string) (*Result, error) {
	conv, err := s.conversations.GetByID(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	doc, err := s.assemble(ctx, conv)
	if err != nil {
		return nil, err
	}

	html, err := RenderHTML(doc)
	if err != nil {
		return nil, renderError(err)
	}

	title := "Performance Review " + doc.EmployeeName + " " + doc.CycleName
	result, err := s.renderer.Render(ctx, html, title)
	if err != nil {
		return nil, renderError(err)
	}

	s.logger.Info("conversation exported",
		"conversation_id", conversationID,
		"actor", actor.Email,
		"bytes", len(result.Data))
	return result, nil
}

// assemble joins the conversation with its cycle and the two identity
// records, sanitizing every free-text field on the way.
func (s *Service) assemble(ctx context.Context, conv *conversation.Conversation) (*Document, error) {
	cyc, err := s.cycles.GetByID(ctx, conv.CycleID)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		CycleName:           cyc.Name,
		CycleStart:          cyc.StartDate,
		CycleEnd:            cyc.EndDate,
		Employee:            conv.EmployeeEmail,
		EmployeeName:        conv.EmployeeEmail,
		Status:              conv.Status,
		Feedback:            SanitizeText(conv.ManagerFeedback),
		MeetingDate:         conv.MeetingDate,
		RatingPerformance:   conv.RatingPerformance,
		RatingCollaboration: conv.RatingCollaboration,
		RatingGrowth:        conv.RatingGrowth,
		UpdatedAt:           conv.UpdatedAt,
		UpdatedByEmail:      conv.UpdatedByEmail,
		GeneratedAt:         time.Now().UTC(),
		Sections: []Section{
			{Label: "Progress on Previous Goals", Text: SanitizeText(conv.ProgressOnPreviousGoals)},
			{Label: "Status Since Last Meeting", Text: SanitizeText(conv.StatusSinceLastMeeting)},
			{Label: "New Goals", Text: SanitizeText(conv.NewGoals)},
			{Label: "How to Achieve Goals", Text: SanitizeText(conv.HowToAchieveGoals)},
			{Label: "Support Needed", Text: SanitizeText(conv.SupportNeeded)},
			{Label: "Feedback and Wishes", Text: SanitizeText(conv.FeedbackAndWishes)},
		},
	}
	doc.HasRatings = conv.RatingPerformance != nil || conv.RatingCollaboration != nil || conv.RatingGrowth != nil

	if employee, err := s.users.GetByEmail(ctx, conv.EmployeeEmail); err == nil && employee != nil {
		doc.EmployeeName = employee.Name
		doc.Department = employee.Department
	}
	if conv.ManagerEmail != nil {
		doc.Manager = *conv.ManagerEmail
		if manager, err := s.users.GetByEmail(ctx, *conv.ManagerEmail); err == nil && manager != nil {
			doc.ManagerName = manager.Name
		}
	}
	return doc, nil
}

func renderError(err error) *internal.AppError {
	appErr := internal.NewInternalError("failed to render pdf", err)
	appErr.Code = internal.ErrCodeRenderFailed
	return appErr
}
