package conversation_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/conversation"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

func TestConversation(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Conversation Module Suite")
}

// Mock repository for testing
type mockConversationRepository struct {
	byID map[string]*conversation.Conversation
}

func newMockConversationRepository() *mockConversationRepository {
	return &mockConversationRepository{byID: make(map[string]*conversation.Conversation)}
}

func (m *mockConversationRepository) GetByID(ctx context.Context, id string) (*conversation.Conversation, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *mockConversationRepository) GetByCycleAndEmployee(ctx context.Context, cycleID, employeeEmail string) (*conversation.Conversation, error) {
	for _, c := range m.byID {
		if c.CycleID == cycleID && c.EmployeeEmail == employeeEmail {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockConversationRepository) ListByEmployee(ctx context.Context, employeeEmail string) ([]*conversation.Conversation, error) {
	var out []*conversation.Conversation
	for _, c := range m.byID {
		if c.EmployeeEmail == employeeEmail {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockConversationRepository) Create(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error) {
	if existing, _ := m.GetByCycleAndEmployee(ctx, c.CycleID, c.EmployeeEmail); existing != nil {
		return existing, nil
	}
	copied := *c
	m.byID[c.ID] = &copied
	result := copied
	return &result, nil
}

func (m *mockConversationRepository) Update(ctx context.Context, c *conversation.Conversation) error {
	if _, ok := m.byID[c.ID]; !ok {
		return internal.ErrConversationNotFound
	}
	copied := *c
	m.byID[c.ID] = &copied
	return nil
}

func (m *mockConversationRepository) DeleteForUser(ctx context.Context, email string) (int64, error) {
	var deleted int64
	for id, c := range m.byID {
		if c.EmployeeEmail == email || (c.ManagerEmail != nil && *c.ManagerEmail == email) {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockConversationRepository) DeleteByCycle(ctx context.Context, cycleID string) (int64, error) {
	var deleted int64
	for id, c := range m.byID {
		if c.CycleID == cycleID {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

// Mock user directory for testing
type mockDirectory struct {
	users map[string]*user.User
}

func newMockUserDirectory() *mockDirectory {
	return &mockDirectory{users: make(map[string]*user.User)}
}

func (m *mockDirectory) add(email string, managerEmail *string, roles ...string) *user.User {
	if len(roles) == 0 {
		roles = []string{auth.RoleEmployee}
	}
	u := &user.User{
		ID:           "id-" + email,
		Email:        email,
		Name:         "Name " + email,
		Department:   "Engineering",
		ManagerEmail: managerEmail,
		Roles:        roles,
		IsActive:     true,
	}
	m.users[email] = u
	return u
}

func (m *mockDirectory) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *mockDirectory) ListByManager(ctx context.Context, managerEmail string) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		if u.ManagerEmail != nil && *u.ManagerEmail == managerEmail {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Mock cycle source for testing
type mockCycleSource struct {
	cycles []*cycle.Cycle
}

func (m *mockCycleSource) GetActive(ctx context.Context) (*cycle.Cycle, error) {
	for _, c := range m.cycles {
		if c.Status == cycle.StatusActive {
			return c, nil
		}
	}
	return nil, internal.ErrNoActiveCycle
}

func (m *mockCycleSource) GetByID(ctx context.Context, id string) (*cycle.Cycle, error) {
	for _, c := range m.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, internal.ErrCycleNotFound
}

func (m *mockCycleSource) List(ctx context.Context) ([]*cycle.Cycle, error) {
	return m.cycles, nil
}

func authUser(u *user.User) *auth.User {
	return u.ToAuthUser()
}

var _ = ginkgo.Describe("ConversationService", func() {
	var (
		service *conversation.Service
		repo    *mockConversationRepository
		users   *mockDirectory
		cycles  *mockCycleSource
		ctx     context.Context

		manager  *user.User
		employee *user.User
		admin    *user.User
	)

	managerEmail := "boss@company.com"

	ginkgo.BeforeEach(func() {
		repo = newMockConversationRepository()
		users = newMockUserDirectory()
		cycles = &mockCycleSource{cycles: []*cycle.Cycle{
			{ID: "cycle-1", Name: "2026 Annual Review", Status: cycle.StatusActive},
			{ID: "cycle-0", Name: "2025 Annual Review", Status: cycle.StatusArchived},
		}}

		manager = users.add("boss@company.com", nil, auth.RoleEmployee, auth.RoleManager)
		employee = users.add("jane@company.com", &managerEmail)
		admin = users.add("hr@company.com", nil, auth.RoleEmployee, auth.RoleAdmin)

		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = conversation.NewService(repo, users, cycles, lg)
		ctx = context.Background()
	})

	ginkgo.Describe("GetMine", func() {
		ginkgo.It("should lazily create the conversation with a manager snapshot", func() {
			conv, err := service.GetMine(ctx, authUser(employee))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(conv.CycleID).To(gomega.Equal("cycle-1"))
			gomega.Expect(conv.EmployeeEmail).To(gomega.Equal("jane@company.com"))
			gomega.Expect(conv.Status).To(gomega.Equal(conversation.StatusNotStarted))
			gomega.Expect(conv.ManagerEmail).ToNot(gomega.BeNil())
			gomega.Expect(*conv.ManagerEmail).To(gomega.Equal("boss@company.com"))
		})

		ginkgo.It("should return the same conversation on repeat access", func() {
			first, err := service.GetMine(ctx, authUser(employee))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			second, err := service.GetMine(ctx, authUser(employee))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second.ID).To(gomega.Equal(first.ID))
			gomega.Expect(repo.byID).To(gomega.HaveLen(1))
		})

		ginkgo.It("should leave the snapshot empty when the employee has no manager", func() {
			loner := users.add("solo@company.com", nil)

			conv, err := service.GetMine(ctx, authUser(loner))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(conv.ManagerEmail).To(gomega.BeNil())
		})

		ginkgo.It("should fail without an active cycle", func() {
			cycles.cycles[0].Status = cycle.StatusArchived

			_, err := service.GetMine(ctx, authUser(employee))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrNoActiveCycle))
		})
	})

	ginkgo.Describe("UpdateMine", func() {
		var conv *conversation.Conversation

		ginkgo.BeforeEach(func() {
			var err error
			conv, err = service.GetMine(ctx, authUser(employee))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should patch only the supplied fields and stamp the editor", func() {
			goals := "Ship the migration"
			status := conversation.StatusInProgress

			updated, err := service.UpdateMine(ctx, authUser(employee), conversation.EmployeeUpdateDTO{
				NewGoals: &goals,
				Status:   &status,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.NewGoals).To(gomega.Equal("Ship the migration"))
			gomega.Expect(updated.Status).To(gomega.Equal(conversation.StatusInProgress))
			gomega.Expect(updated.ProgressOnPreviousGoals).To(gomega.BeEmpty())
			gomega.Expect(updated.UpdatedByEmail).To(gomega.Equal("jane@company.com"))
		})

		ginkgo.It("should clear a field on an explicit empty string", func() {
			goals := "Ship the migration"
			_, err := service.UpdateMine(ctx, authUser(employee), conversation.EmployeeUpdateDTO{NewGoals: &goals})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			empty := ""
			updated, err := service.UpdateMine(ctx, authUser(employee), conversation.EmployeeUpdateDTO{NewGoals: &empty})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.NewGoals).To(gomega.BeEmpty())
		})

		ginkgo.It("should let employees move between in_progress and ready_for_manager", func() {
			for _, status := range []string{conversation.StatusInProgress, conversation.StatusReadyForManager, conversation.StatusInProgress} {
				s := status
				updated, err := service.UpdateMine(ctx, authUser(employee), conversation.EmployeeUpdateDTO{Status: &s})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(updated.Status).To(gomega.Equal(status))
			}
		})

		ginkgo.It("should reject employee attempts to set completed", func() {
			status := conversation.StatusCompleted

			_, err := service.UpdateMine(ctx, authUser(employee), conversation.EmployeeUpdateDTO{Status: &status})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidTransition))
		})

		ginkgo.It("should reject edits once the conversation is completed", func() {
			stored := repo.byID[conv.ID]
			stored.Status = conversation.StatusCompleted

			goals := "Too late"
			_, err := service.UpdateMine(ctx, authUser(employee), conversation.EmployeeUpdateDTO{NewGoals: &goals})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrConversationLocked))
		})
	})

	ginkgo.Describe("GetForReport", func() {
		ginkgo.It("should let the direct manager open a report's conversation", func() {
			resp, err := service.GetForReport(ctx, authUser(manager), "jane@company.com")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.Conversation.EmployeeEmail).To(gomega.Equal("jane@company.com"))
			gomega.Expect(resp.Employee.Email).To(gomega.Equal("jane@company.com"))
		})

		ginkgo.It("should let an admin open anyone's conversation", func() {
			resp, err := service.GetForReport(ctx, authUser(admin), "jane@company.com")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.Conversation.EmployeeEmail).To(gomega.Equal("jane@company.com"))
		})

		ginkgo.It("should read as not-found for managers probing outside their reports", func() {
			other := users.add("other.boss@company.com", nil, auth.RoleEmployee, auth.RoleManager)

			_, err := service.GetForReport(ctx, authUser(other), "jane@company.com")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})

		ginkgo.It("should read as not-found for unknown employees", func() {
			_, err := service.GetForReport(ctx, authUser(manager), "ghost@company.com")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})

		ginkgo.It("should snapshot the opener when the employee has no manager on file", func() {
			users.add("orphan@company.com", nil)

			resp, err := service.GetForReport(ctx, authUser(admin), "orphan@company.com")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.Conversation.ManagerEmail).ToNot(gomega.BeNil())
			gomega.Expect(*resp.Conversation.ManagerEmail).To(gomega.Equal("hr@company.com"))
		})
	})

	ginkgo.Describe("UpdateForReport", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.GetForReport(ctx, authUser(manager), "jane@company.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should apply feedback, ratings and the meeting date", func() {
			feedback := "Strong year."
			meeting := "2026-09-15"
			rating := 4

			updated, err := service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{
				ManagerFeedback:   &feedback,
				MeetingDate:       &meeting,
				RatingPerformance: &rating,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.ManagerFeedback).To(gomega.Equal("Strong year."))
			gomega.Expect(updated.MeetingDate).ToNot(gomega.BeNil())
			gomega.Expect(updated.MeetingDate.Format("2006-01-02")).To(gomega.Equal("2026-09-15"))
			gomega.Expect(updated.RatingPerformance).ToNot(gomega.BeNil())
			gomega.Expect(*updated.RatingPerformance).To(gomega.Equal(4))
			gomega.Expect(updated.UpdatedByEmail).To(gomega.Equal("boss@company.com"))
		})

		ginkgo.It("should clear the meeting date on an empty string", func() {
			meeting := "2026-09-15"
			_, err := service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{MeetingDate: &meeting})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			empty := ""
			updated, err := service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{MeetingDate: &empty})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.MeetingDate).To(gomega.BeNil())
		})

		ginkgo.It("should reject out-of-range ratings", func() {
			rating := 6

			_, err := service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{
				RatingGrowth: &rating,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeValidationFailed))
		})

		ginkgo.It("should reject a malformed meeting date", func() {
			meeting := "15/09/2026"

			_, err := service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{
				MeetingDate: &meeting,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should let the manager complete and later reopen a review", func() {
			completed := conversation.StatusCompleted
			updated, err := service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{Status: &completed})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(conversation.StatusCompleted))

			reopened := conversation.StatusInProgress
			updated, err = service.UpdateForReport(ctx, authUser(manager), "jane@company.com", conversation.ManagerUpdateDTO{Status: &reopened})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(conversation.StatusInProgress))
		})
	})

	ginkgo.Describe("Reports", func() {
		ginkgo.It("should list direct reports with their conversation state", func() {
			conv, err := service.GetMine(ctx, authUser(employee))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			entries, err := service.Reports(ctx, authUser(manager))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entries).To(gomega.HaveLen(1))
			gomega.Expect(entries[0].Email).To(gomega.Equal("jane@company.com"))
			gomega.Expect(entries[0].ConversationStatus).To(gomega.Equal(conversation.StatusNotStarted))
			gomega.Expect(entries[0].ConversationID).ToNot(gomega.BeNil())
			gomega.Expect(*entries[0].ConversationID).To(gomega.Equal(conv.ID))
		})

		ginkgo.It("should report not_started for reports without a conversation yet", func() {
			entries, err := service.Reports(ctx, authUser(manager))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entries).To(gomega.HaveLen(1))
			gomega.Expect(entries[0].ConversationStatus).To(gomega.Equal(conversation.StatusNotStarted))
			gomega.Expect(entries[0].ConversationID).To(gomega.BeNil())
		})

		ginkgo.It("should still list reports when no cycle is active", func() {
			cycles.cycles[0].Status = cycle.StatusArchived

			entries, err := service.Reports(ctx, authUser(manager))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entries).To(gomega.HaveLen(1))
			gomega.Expect(entries[0].ConversationStatus).To(gomega.BeEmpty())
			gomega.Expect(entries[0].ConversationID).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("History", func() {
		ginkgo.It("should annotate past conversations with their cycle", func() {
			repo.byID["past"] = &conversation.Conversation{
				ID: "past", CycleID: "cycle-0", EmployeeEmail: "jane@company.com",
				Status: conversation.StatusCompleted,
			}

			entries, err := service.History(ctx, authUser(employee))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entries).To(gomega.HaveLen(1))
			gomega.Expect(entries[0].CycleName).To(gomega.Equal("2025 Annual Review"))
			gomega.Expect(entries[0].CycleStatus).To(gomega.Equal(cycle.StatusArchived))
		})

		ginkgo.It("should gate report history behind the manager relationship", func() {
			other := users.add("other.boss@company.com", nil, auth.RoleEmployee, auth.RoleManager)

			_, err := service.HistoryForReport(ctx, authUser(other), "jane@company.com")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})
	})

	ginkgo.Describe("GetByID", func() {
		var conv *conversation.Conversation

		ginkgo.BeforeEach(func() {
			var err error
			conv, err = service.GetMine(ctx, authUser(employee))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should allow the subject, the snapshotted manager and admins", func() {
			for _, actor := range []*user.User{employee, manager, admin} {
				found, err := service.GetByID(ctx, authUser(actor), conv.ID)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(found.ID).To(gomega.Equal(conv.ID))
			}
		})

		ginkgo.It("should read as not-found for everyone else", func() {
			stranger := users.add("stranger@company.com", nil)

			_, err := service.GetByID(ctx, authUser(stranger), conv.ID)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrConversationNotFound))
		})

		ginkgo.It("should read as not-found for unknown ids", func() {
			_, err := service.GetByID(ctx, authUser(admin), "missing")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrConversationNotFound))
		})
	})
})
