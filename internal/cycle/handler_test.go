package cycle_test

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

	"github.com/Autonom664/hr-performance-dstchemicals/internal"
	cycleDatamodel "github.com/Autonom664/hr-performance-dstchemicals/internal/core/datamodel/cycle"
	"github.com/Autonom664/hr-performance-dstchemicals/internal/cycle"
	cyclePostgres "github.com/Autonom664/hr-performance-dstchemicals/internal/cycle/postgres"
)

var _ = ginkgo.Describe("Cycle Handler Integration", func() {
	var (
		router *chi.Mux
		purger *mockCyclePurger
	)

	ginkgo.BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(db.AutoMigrate(&cycleDatamodel.Cycle{})).To(gomega.Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo := cyclePostgres.NewCycleRepository(db)
		purger = &mockCyclePurger{deletedByCycle: make(map[string]int64)}
		service := cycle.NewService(repo, purger, slogger)
		handler := cycle.NewHandler(service, slogger)

		router = chi.NewRouter()
		router.Post("/admin/cycles", handler.CreateCycle)
		router.Get("/admin/cycles", handler.ListCycles)
		router.Patch("/admin/cycles/{id}", handler.UpdateCycleStatus)
		router.Delete("/admin/cycles/{id}", handler.DeleteCycle)
		router.Get("/cycles/active", handler.GetActiveCycle)
	})

	createCycle := func(name string) cycle.Cycle {
		body := `{"name":"` + name + `","start_date":"2026-01-01T00:00:00Z","end_date":"2026-12-31T00:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/cycles", strings.NewReader(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))
		var created cycle.Cycle
		gomega.Expect(json.NewDecoder(w.Body).Decode(&created)).To(gomega.Succeed())
		return created
	}

	ginkgo.It("should create a draft cycle over HTTP", func() {
		created := createCycle("2026 Annual Review")

		gomega.Expect(created.Name).To(gomega.Equal("2026 Annual Review"))
		gomega.Expect(created.Status).To(gomega.Equal(cycle.StatusDraft))
		gomega.Expect(created.ID).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("should activate a cycle through the status endpoint", func() {
		created := createCycle("2026 Annual Review")

		req := httptest.NewRequest(http.MethodPatch, "/admin/cycles/"+created.ID+"?status=active", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var updated cycle.Cycle
		gomega.Expect(json.NewDecoder(w.Body).Decode(&updated)).To(gomega.Succeed())
		gomega.Expect(updated.Status).To(gomega.Equal(cycle.StatusActive))

		req = httptest.NewRequest(http.MethodGet, "/cycles/active", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should reject an invalid transition with a conflict envelope", func() {
		created := createCycle("2026 Annual Review")

		activate := httptest.NewRequest(http.MethodPatch, "/admin/cycles/"+created.ID+"?status=active", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, activate)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

		back := httptest.NewRequest(http.MethodPatch, "/admin/cycles/"+created.ID+"?status=draft", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, back)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusConflict))
		var envelope internal.Response
		gomega.Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(gomega.Succeed())
		gomega.Expect(envelope.Error.Code).To(gomega.Equal(internal.ErrCodeInvalidTransition))
	})

	ginkgo.It("should require the status query parameter", func() {
		created := createCycle("2026 Annual Review")

		req := httptest.NewRequest(http.MethodPatch, "/admin/cycles/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("should report the conversation cascade on delete", func() {
		created := createCycle("2026 Annual Review")
		purger.deletedByCycle[created.ID] = 5

		req := httptest.NewRequest(http.MethodDelete, "/admin/cycles/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var result cycle.DeleteCycleResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&result)).To(gomega.Succeed())
		gomega.Expect(result.ConversationsDeleted).To(gomega.Equal(int64(5)))
	})

	ginkgo.It("should return null for the active cycle when none is active", func() {
		req := httptest.NewRequest(http.MethodGet, "/cycles/active", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(strings.TrimSpace(w.Body.String())).To(gomega.Equal("null"))
	})
})
