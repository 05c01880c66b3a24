package acceptance_test

import (
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("empty commit suppression", func() {
	var tmpDir, repoDir string

	BeforeEach(func() {
		tmpDir, repoDir = newTempRepo("autogit-empty")
		writeFile(filepath.Join(repoDir, ".autogit.json"), `{"interval_seconds":1,"exclude":[],"enabled":true}`)
	})

	AfterEach(func() {
		cleanupTestRepo(repoDir, tmpDir)
	})

	It("does not create a shadow commit when nothing in the tree actually changed", func() {
		startCmd := exec.Command(binaryPath, "start", repoDir)
		Expect(startCmd.Start()).To(Succeed())
		defer startCmd.Wait()

		Eventually(func() error {
			return exec.Command(binaryPath, "status", repoDir).Run()
		}, 3*time.Second, 100*time.Millisecond).Should(Succeed())

		// Rewrite README.md with byte-identical content: a watch event
		// fires, but the resulting tree hash equals the shadow parent's.
		writeFile(filepath.Join(repoDir, "README.md"), "hello\n")

		// Outlast the 5s debounce window so the batch is actually processed.
		time.Sleep(7 * time.Second)

		stopOut, err := exec.Command(binaryPath, "stop", repoDir).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "stop output: %s", string(stopOut))

		out, statErr := exec.Command("git", "-C", repoDir, "rev-parse", "--verify", "autogit/tracking").CombinedOutput()
		if statErr == nil {
			shadowHead := strings.TrimSpace(string(out))
			userHead := strings.TrimSpace(runGitOutput(repoDir, "rev-parse", "main"))
			Expect(shadowHead).To(Equal(userHead), "shadow branch must not advance with no net content change")
		}
	})
})
