package acceptance_test

import (
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("basic commit recording", func() {
	var tmpDir, repoDir string

	BeforeEach(func() {
		tmpDir, repoDir = newTempRepo("autogit-basic")
		writeFile(filepath.Join(repoDir, ".autogit.json"), `{"interval_seconds":1,"exclude":[],"enabled":true}`)
	})

	AfterEach(func() {
		cleanupTestRepo(repoDir, tmpDir)
	})

	It("records a saved change as a commit on the shadow branch without touching the user's branch", func() {
		startCmd := exec.Command(binaryPath, "start", repoDir)
		Expect(startCmd.Start()).To(Succeed())
		defer startCmd.Wait()

		userHeadBefore := strings.TrimSpace(runGitOutput(repoDir, "rev-parse", "main"))

		Eventually(func() error {
			return exec.Command(binaryPath, "status", repoDir).Run()
		}, 3*time.Second, 100*time.Millisecond).Should(Succeed())

		writeFile(filepath.Join(repoDir, "notes.txt"), "draft\n")

		Eventually(func() uint64 {
			return commitsWritten(repoDir)
		}, 10*time.Second, 200*time.Millisecond).Should(BeNumerically(">=", uint64(1)))

		stopOut, err := exec.Command(binaryPath, "stop", repoDir).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "stop output: %s", string(stopOut))

		shadowHead := strings.TrimSpace(runGitOutput(repoDir, "rev-parse", "autogit/tracking"))
		userHeadAfter := strings.TrimSpace(runGitOutput(repoDir, "rev-parse", "main"))

		Expect(userHeadAfter).To(Equal(userHeadBefore), "user's branch must not move")
		Expect(shadowHead).NotTo(Equal(userHeadBefore), "shadow branch should have a new commit")

		files := runGitOutput(repoDir, "diff-tree", "--no-commit-id", "-r", "--name-only", shadowHead)
		Expect(files).To(ContainSubstring("notes.txt"))

		message := runGitOutput(repoDir, "log", "-1", "--format=%B", shadowHead)
		Expect(message).To(ContainSubstring("autogit:"))

		author := strings.TrimSpace(runGitOutput(repoDir, "log", "-1", "--format=%an", shadowHead))
		Expect(author).To(Equal("autogit"))
	})
})
