package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	conversationDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/conversation"
	cycleDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/cycle"
	userDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/user"
)

// demoPassword is shared by every seeded account. Demo accounts skip
// the forced password change.
const demoPassword = "Demo@123456"

type seedUser struct {
	email        string
	name         string
	department   string
	managerEmail string
	roles        string
}

var demoUsers = []seedUser{
	{"admin@company.com", "Sarah Admin", "Human Resources", "", "employee,admin"},
	{"cto@company.com", "Michael Chen", "Engineering", "", "employee,manager"},
	{"engineering.lead@company.com", "Emily Rodriguez", "Engineering", "cto@company.com", "employee,manager"},
	{"developer1@company.com", "Alex Thompson", "Engineering", "engineering.lead@company.com", "employee"},
	{"developer2@company.com", "Jordan Lee", "Engineering", "engineering.lead@company.com", "employee"},
	{"developer3@company.com", "Sam Wilson", "Engineering", "engineering.lead@company.com", "employee"},
	{"marketing.head@company.com", "Lisa Martinez", "Marketing", "", "employee,manager"},
	{"marketing1@company.com", "Chris Johnson", "Marketing", "marketing.head@company.com", "employee"},
	{"marketing2@company.com", "Taylor Brown", "Marketing", "marketing.head@company.com", "employee"},
	{"hr.manager@company.com", "Patricia Davis", "Human Resources", "admin@company.com", "employee,manager"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo organization",
	Long:  `Seed the database with demo accounts, an active review cycle and a few in-flight conversations.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			for _, table := range []string{"conversations", "sessions", "cycles", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash demo password: %v", err)
		}

		now := time.Now().UTC()
		for _, su := range demoUsers {
			var count int64
			db.Model(&userDatamodel.User{}).Where("email = ?", su.email).Count(&count)
			if count > 0 {
				fmt.Println("user already exists, skipping:", su.email)
				continue
			}

			u := &userDatamodel.User{
				ID:           uuid.New().String(),
				Email:        su.email,
				Name:         su.name,
				Department:   su.department,
				Roles:        su.roles,
				IsActive:     true,
				PasswordHash: string(hash),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if su.managerEmail != "" {
				manager := su.managerEmail
				u.ManagerEmail = &manager
			}
			if err := db.Create(u).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", su.email, err)
			}
			fmt.Println("Seeded user:", su.email)
		}

		cycleID := seedCycle(db, now)
		seedConversations(db, cycleID, now)

		fmt.Println("Done. All demo accounts use password:", demoPassword)
	},
}

func seedCycle(db *gorm.DB, now time.Time) string {
	var existing cycleDatamodel.Cycle
	if err := db.Where("status = ?", "active").First(&existing).Error; err == nil {
		fmt.Println("active cycle already exists, skipping:", existing.Name)
		return existing.ID
	}

	year := now.Year()
	c := &cycleDatamodel.Cycle{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("%d Annual Performance Review", year),
		StartDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(c).Error; err != nil {
		log.Fatalf("failed to seed cycle: %v", err)
	}
	fmt.Println("Seeded cycle:", c.Name)
	return c.ID
}

func seedConversations(db *gorm.DB, cycleID string, now time.Time) {
	manager := "engineering.lead@company.com"
	conversations := []*conversationDatamodel.Conversation{
		{
			ID:                      uuid.New().String(),
			CycleID:                 cycleID,
			EmployeeEmail:           "developer1@company.com",
			ManagerEmail:            &manager,
			ProgressOnPreviousGoals: "Shipped the payments integration ahead of schedule and closed out the on-call backlog.",
			StatusSinceLastMeeting:  "Picked up code review duties for the new hires.",
			NewGoals:                "Lead the migration to the new deployment pipeline.",
			Status:                  "in_progress",
			UpdatedByEmail:          "developer1@company.com",
			CreatedAt:               now,
			UpdatedAt:               now,
		},
		{
			ID:                      uuid.New().String(),
			CycleID:                 cycleID,
			EmployeeEmail:           "developer2@company.com",
			ManagerEmail:            &manager,
			ProgressOnPreviousGoals: "Completed the reliability work agreed last cycle.",
			StatusSinceLastMeeting:  "Mentored two interns through their first releases.",
			NewGoals:                "Take ownership of the search service.",
			HowToAchieveGoals:       "Pair with the current owner during Q1, then rotate on-call.",
			SupportNeeded:           "A training budget for the distributed-systems course.",
			Status:                  "ready_for_manager",
			UpdatedByEmail:          "developer2@company.com",
			CreatedAt:               now,
			UpdatedAt:               now,
		},
	}

	for _, conv := range conversations {
		var count int64
		db.Model(&conversationDatamodel.Conversation{}).
			Where("cycle_id = ? AND employee_email = ?", conv.CycleID, conv.EmployeeEmail).
			Count(&count)
		if count > 0 {
			fmt.Println("conversation already exists, skipping:", conv.EmployeeEmail)
			continue
		}
		if err := db.Create(conv).Error; err != nil {
			log.Fatalf("failed to seed conversation for %s: %v", conv.EmployeeEmail, err)
		}
		fmt.Println("Seeded conversation:", conv.EmployeeEmail)
	}
}
