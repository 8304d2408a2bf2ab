package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/test-integration/pipeline-tracker/helpers"
)

func currentOf(history []pipeline.ChangePipelineStatus, number int64) string {
	for _, h := range history {
		if h.Change.Number == number && h.Current != nil {
			return h.Current.Stage.Name + "/" + string(h.Current.Status.Type)
		}
	}
	return ""
}

func numbersOf(history []pipeline.ChangePipelineStatus) []int64 {
	out := make([]int64, 0, len(history))
	for _, h := range history {
		out = append(out, h.Change.Number)
	}
	return out
}

var _ = Describe("Pipeline tracker", Label("tracker"), func() {
	var (
		tempDir   string
		gerrit    *helpers.FakeGerrit
		stageHost *helpers.FakeStageHost
		server    *helpers.ServerTestHelper
		prune     bool
	)

	BeforeEach(func() {
		tempDir = createTempDir("pipeline-tracker-test-")
		gerrit = helpers.NewFakeGerrit()
		stageHost = helpers.NewFakeStageHost()
		prune = false

		gerrit.SetChange(helpers.DemoChange(1756, "One change"))
		gerrit.SetChange(helpers.DemoChange(1757, "Another change"))
		stageHost.SetState("demo", "1756", "SUCCESS")
	})

	JustBeforeEach(func() {
		entitiesPath := helpers.WriteEntitiesYAML(tempDir, stageHost.URL)
		configPath := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
			EntitiesPath: entitiesPath,
			GerritURL:    gerrit.URL,
			Prune:        prune,
		})

		server = helpers.NewServerTestHelper(ctx, configPath)
		Expect(server.StartServer()).To(Succeed())
		server.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		if server != nil {
			Expect(server.StopServer()).To(Succeed())
		}
		gerrit.Close()
		stageHost.Close()
		cleanupTempDir(tempDir)
	})

	Context("history", func() {
		It("reports the collapsed stage of every open change", func() {
			Eventually(func(g Gomega) {
				code, history, err := server.GetHistory("component", "demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(code).To(Equal(http.StatusOK))
				g.Expect(numbersOf(history)).To(ConsistOf(int64(1756), int64(1757)))
				g.Expect(currentOf(history, 1756)).To(Equal("build/passed"))
				g.Expect(currentOf(history, 1757)).To(Equal("build/un-entered"))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())
		})

		It("advances when a stage reports a new state", func() {
			Eventually(func(g Gomega) {
				_, history, err := server.GetHistory("component", "demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(currentOf(history, 1757)).To(Equal("build/un-entered"))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())

			stageHost.SetState("demo", "1757", "BUILDING")

			Eventually(func(g Gomega) {
				_, history, err := server.GetHistory("component", "demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(currentOf(history, 1757)).To(Equal("build/running"))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())
		})

		It("accepts the namespaced form of the entity reference", func() {
			Eventually(func(g Gomega) {
				resp, err := server.Get("/history/Component/default/demo")
				g.Expect(err).NotTo(HaveOccurred())
				defer func() {
					_ = resp.Body.Close()
				}()
				g.Expect(resp.StatusCode).To(Equal(http.StatusOK))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())
		})

		It("returns an empty list for an entity without a project", func() {
			code, history, err := server.GetHistory("component", "docs")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))
			Expect(history).To(BeEmpty())
		})

		It("rejects an unknown entity", func() {
			code, _, err := server.GetHistory("component", "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusUnprocessableEntity))
		})
	})

	Context("status", func() {
		It("reports a completed reconciliation with the change count", func() {
			Eventually(func(g Gomega) {
				code, st, err := server.GetStatus("demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(code).To(Equal(http.StatusOK))
				g.Expect(st.Phase).To(Equal(status.SyncPhaseComplete))
				g.Expect(st.ChangeCount).To(Equal(2))
				g.Expect(st.LastSyncTime).NotTo(BeNil())
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())
		})

		It("returns 404 for a project that is not tracked", func() {
			code, _, err := server.GetStatus("unknown")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusNotFound))
		})

		It("marks the project failed while Gerrit is down and keeps serving history", func() {
			Eventually(func(g Gomega) {
				_, history, err := server.GetHistory("component", "demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(history).To(HaveLen(2))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())

			gerrit.SetFailing(true)

			Eventually(func(g Gomega) {
				_, st, err := server.GetStatus("demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(st.Phase).To(Equal(status.SyncPhaseFailed))
				g.Expect(st.Message).NotTo(BeEmpty())
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())

			code, history, err := server.GetHistory("component", "demo")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))
			Expect(history).To(HaveLen(2))

			gerrit.SetFailing(false)

			Eventually(func(g Gomega) {
				_, st, err := server.GetStatus("demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(st.Phase).To(Equal(status.SyncPhaseComplete))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())
		})
	})

	Context("closed changes", func() {
		It("keeps merged changes when pruning is disabled", func() {
			Eventually(func(g Gomega) {
				_, history, err := server.GetHistory("component", "demo")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(history).To(HaveLen(2))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())

			gerrit.Merge("demo", 1757)
			requests := gerrit.Requests()
			Eventually(gerrit.Requests, 10*time.Second, 50*time.Millisecond).Should(BeNumerically(">", requests+1))

			_, history, err := server.GetHistory("component", "demo")
			Expect(err).NotTo(HaveOccurred())
			Expect(numbersOf(history)).To(ConsistOf(int64(1756), int64(1757)))
		})

		When("pruning is enabled", func() {
			BeforeEach(func() {
				prune = true
			})

			It("removes merged changes from the history", func() {
				Eventually(func(g Gomega) {
					_, history, err := server.GetHistory("component", "demo")
					g.Expect(err).NotTo(HaveOccurred())
					g.Expect(history).To(HaveLen(2))
				}, 10*time.Second, 100*time.Millisecond).Should(Succeed())

				gerrit.Merge("demo", 1757)

				Eventually(func(g Gomega) {
					_, history, err := server.GetHistory("component", "demo")
					g.Expect(err).NotTo(HaveOccurred())
					g.Expect(numbersOf(history)).To(ConsistOf(int64(1756)))
				}, 10*time.Second, 100*time.Millisecond).Should(Succeed())
			})
		})
	})
})
