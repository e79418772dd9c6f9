package user_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	userDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/user"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
	userPostgres "github.com/Autonom664/hr-performance-dstchemicals/internal/user/postgres"
)

var _ = ginkgo.Describe("User Handler Integration", func() {
	var (
		router *chi.Mux
		db     *gorm.DB
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(db.AutoMigrate(&userDatamodel.User{})).To(gomega.Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := userPostgres.NewUserRepository(db)
		service := user.NewService(repo, newMockSessionStore(), newMockConversationPurger(), 4, slogger)
		handler := user.NewHandler(service, slogger)

		router = chi.NewRouter()
		router.Post("/admin/users", handler.CreateUser)
		router.Post("/admin/users/import", handler.ImportUsers)
		router.Post("/admin/users/import/csv", handler.ImportUsersCSV)
	})

	storedUser := func(email string) *userDatamodel.User {
		var model userDatamodel.User
		gomega.Expect(db.Where("email = ?", email).First(&model).Error).To(gomega.Succeed())
		return &model
	}

	ginkgo.Describe("ImportUsers", func() {
		ginkgo.It("should accept a bare JSON array of import rows", func() {
			body := `[
				{"employee_email":"jane@company.com","employee_name":"Jane Doe","department":"Engineering","manager_email":"boss@company.com"},
				{"employee_email":"boss@company.com","employee_name":"Boss"},
				{"employee_email":"hr@company.com","employee_name":"HR Admin","is_admin":true}
			]`
			req := httptest.NewRequest(http.MethodPost, "/admin/users/import", strings.NewReader(body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var result user.ImportResult
			gomega.Expect(json.NewDecoder(w.Body).Decode(&result)).To(gomega.Succeed())
			gomega.Expect(result.Imported).To(gomega.Equal(3))
			gomega.Expect(result.Errors).To(gomega.BeEmpty())
			gomega.Expect(result.CredentialsCSV).To(gomega.ContainSubstring("jane@company.com"))

			gomega.Expect(storedUser("jane@company.com").Name).To(gomega.Equal("Jane Doe"))
			gomega.Expect(storedUser("boss@company.com").Roles).To(gomega.ContainSubstring("manager"))
			gomega.Expect(storedUser("hr@company.com").Roles).To(gomega.ContainSubstring("admin"))
		})

		ginkgo.It("should reject an empty array", func() {
			req := httptest.NewRequest(http.MethodPost, "/admin/users/import", strings.NewReader(`[]`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("ImportUsersCSV", func() {
		ginkgo.It("should import rows from a raw CSV body", func() {
			csvBody := "employee_email,employee_name,department,manager_email,is_admin\n" +
				"jane@company.com,Jane Doe,Engineering,boss@company.com,\n" +
				"boss@company.com,Boss,Engineering,,false\n" +
				"hr@company.com,HR Admin,People,,true\n"
			req := httptest.NewRequest(http.MethodPost, "/admin/users/import/csv", strings.NewReader(csvBody))
			req.Header.Set("Content-Type", "text/csv")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var result user.ImportResult
			gomega.Expect(json.NewDecoder(w.Body).Decode(&result)).To(gomega.Succeed())
			gomega.Expect(result.Imported).To(gomega.Equal(3))
			gomega.Expect(storedUser("hr@company.com").Roles).To(gomega.ContainSubstring("admin"))
			gomega.Expect(storedUser("boss@company.com").Roles).To(gomega.ContainSubstring("manager"))
		})
	})

	ginkgo.Describe("CreateUser", func() {
		ginkgo.It("should return a conflict for a duplicate email", func() {
			body := `{"email":"jane@company.com","name":"Jane Doe","roles":["employee"]}`
			req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))

			req = httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body))
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusConflict))
		})
	})
})
