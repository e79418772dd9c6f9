package user_test

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/user"
)

var _ = ginkgo.Describe("UserImporter", func() {
	var (
		service *user.Service
		repo    *mockUserRepository
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, newMockSessionStore(), newMockConversationPurger(), 4, lg)
		ctx = context.Background()
	})

	ginkgo.Describe("Import", func() {
		ginkgo.It("should create new accounts with one-time credentials", func() {
			result, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "jane@company.com", EmployeeName: "Jane Doe", Department: "Engineering"},
				{EmployeeEmail: "john@company.com", EmployeeName: "John Smith"},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Imported).To(gomega.Equal(2))
			gomega.Expect(result.Updated).To(gomega.BeZero())
			gomega.Expect(result.Errors).To(gomega.BeEmpty())
			gomega.Expect(result.CredentialsCSV).To(gomega.ContainSubstring("jane@company.com"))
			gomega.Expect(result.CredentialsCSV).To(gomega.ContainSubstring("john@company.com"))

			created := repo.users["jane@company.com"]
			gomega.Expect(created.MustChangePassword).To(gomega.BeTrue())
			gomega.Expect(created.IsActive).To(gomega.BeTrue())
		})

		ginkgo.It("should update rather than duplicate on re-import", func() {
			first, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "jane@company.com", EmployeeName: "Jane Doe", Department: "Engineering"},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(first.Imported).To(gomega.Equal(1))
			originalHash := repo.users["jane@company.com"].PasswordHash

			second, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "Jane@Company.com", EmployeeName: "Jane D.", Department: "Platform"},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second.Imported).To(gomega.BeZero())
			gomega.Expect(second.Updated).To(gomega.Equal(1))
			gomega.Expect(second.CredentialsCSV).To(gomega.BeEmpty())
			gomega.Expect(repo.users).To(gomega.HaveLen(1))

			merged := repo.users["jane@company.com"]
			gomega.Expect(merged.Name).To(gomega.Equal("Jane D."))
			gomega.Expect(merged.Department).To(gomega.Equal("Platform"))
			// existing credentials survive a re-import
			gomega.Expect(merged.PasswordHash).To(gomega.Equal(originalHash))
		})

		ginkgo.It("should leave stored fields alone when a row carries empty cells", func() {
			_, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "jane@company.com", EmployeeName: "Jane Doe", Department: "Engineering"},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "jane@company.com", EmployeeName: "Jane Doe", Department: ""},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.users["jane@company.com"].Department).To(gomega.Equal("Engineering"))
		})

		ginkgo.It("should collect per-row errors without aborting the batch", func() {
			result, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "not-an-email", EmployeeName: "Broken"},
				{EmployeeEmail: "jane@company.com", EmployeeName: ""},
				{EmployeeEmail: "john@company.com", EmployeeName: "John Smith"},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Imported).To(gomega.Equal(1))
			gomega.Expect(result.Errors).To(gomega.HaveLen(2))
			gomega.Expect(repo.users).To(gomega.HaveKey("john@company.com"))
		})

		ginkgo.It("should promote managers regardless of row order", func() {
			result, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "jane@company.com", EmployeeName: "Jane Doe", ManagerEmail: "boss@company.com"},
				{EmployeeEmail: "boss@company.com", EmployeeName: "Boss"},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Imported).To(gomega.Equal(2))
			gomega.Expect(repo.users["boss@company.com"].HasRole(auth.RoleManager)).To(gomega.BeTrue())
		})

		ginkgo.It("should derive the admin role from the is_admin flag", func() {
			_, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "hr@company.com", EmployeeName: "HR Admin", IsAdmin: true},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.users["hr@company.com"].Roles).To(gomega.Equal([]string{"employee", "admin"}))
		})

		ginkgo.It("should never revoke admin when a re-imported row omits the flag", func() {
			_, err := service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "hr@company.com", EmployeeName: "HR Admin", IsAdmin: true},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Import(ctx, []user.ImportItem{
				{EmployeeEmail: "hr@company.com", EmployeeName: "HR Admin"},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.users["hr@company.com"].HasRole(auth.RoleAdmin)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("ParseImportCSV", func() {
		ginkgo.It("should read rows by header name, in any column order", func() {
			csvData := "employee_name,manager_email,employee_email,department\n" +
				"Jane Doe,boss@company.com,jane@company.com,Engineering\n"

			items, err := user.ParseImportCSV(strings.NewReader(csvData))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(items).To(gomega.HaveLen(1))
			gomega.Expect(items[0].EmployeeEmail).To(gomega.Equal("jane@company.com"))
			gomega.Expect(items[0].EmployeeName).To(gomega.Equal("Jane Doe"))
			gomega.Expect(items[0].ManagerEmail).To(gomega.Equal("boss@company.com"))
			gomega.Expect(items[0].Department).To(gomega.Equal("Engineering"))
		})

		ginkgo.It("should parse the is_admin column leniently", func() {
			csvData := "employee_email,employee_name,is_admin\n" +
				"hr@company.com,HR Admin,TRUE\n" +
				"jane@company.com,Jane Doe,no\n" +
				"john@company.com,John Smith,1\n"

			items, err := user.ParseImportCSV(strings.NewReader(csvData))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(items).To(gomega.HaveLen(3))
			gomega.Expect(items[0].IsAdmin).To(gomega.BeTrue())
			gomega.Expect(items[1].IsAdmin).To(gomega.BeFalse())
			gomega.Expect(items[2].IsAdmin).To(gomega.BeTrue())
		})

		ginkgo.It("should ignore unknown columns", func() {
			csvData := "employee_email,employee_name,favorite_color\n" +
				"jane@company.com,Jane Doe,green\n"

			items, err := user.ParseImportCSV(strings.NewReader(csvData))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(items).To(gomega.HaveLen(1))
			gomega.Expect(items[0].EmployeeEmail).To(gomega.Equal("jane@company.com"))
		})

		ginkgo.It("should reject a header without an employee_email column", func() {
			csvData := "employee_name,department\nJane Doe,Engineering\n"

			_, err := user.ParseImportCSV(strings.NewReader(csvData))

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("employee_email column"))
		})

		ginkgo.It("should reject an empty file", func() {
			_, err := user.ParseImportCSV(strings.NewReader(""))

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("GenerateOneTimePassword", func() {
		ginkgo.It("should produce distinct non-empty passwords", func() {
			seen := map[string]bool{}
			for i := 0; i < 20; i++ {
				otp, err := user.GenerateOneTimePassword()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(otp).ToNot(gomega.BeEmpty())
				gomega.Expect(seen[otp]).To(gomega.BeFalse())
				seen[otp] = true
			}
		})
	})

	ginkgo.Describe("BuildCredentialsCSV", func() {
		ginkgo.It("should render a header and one row per credential", func() {
			csvData, err := user.BuildCredentialsCSV([]user.Credential{
				{Email: "jane@company.com", OneTimePassword: "otp-1"},
				{Email: "john@company.com", OneTimePassword: "otp-2"},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			lines := strings.Split(strings.TrimSpace(csvData), "\n")
			gomega.Expect(lines).To(gomega.HaveLen(3))
			gomega.Expect(lines[0]).To(gomega.Equal("email,one_time_password"))
			gomega.Expect(lines[1]).To(gomega.Equal("jane@company.com,otp-1"))
		})
	})
})
