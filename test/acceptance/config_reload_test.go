package acceptance_test

import (
	"os/exec"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("hot config reload", func() {
	var tmpDir, repoDir string

	BeforeEach(func() {
		tmpDir, repoDir = newTempRepo("autogit-reload")
		writeFile(filepath.Join(repoDir, ".autogit.json"), `{"interval_seconds":1,"exclude":[],"enabled":false}`)
	})

	AfterEach(func() {
		cleanupTestRepo(repoDir, tmpDir)
	})

	It("picks up a disabled-to-enabled edit of .autogit.json without a restart", func() {
		startCmd := exec.Command(binaryPath, "start", repoDir)
		Expect(startCmd.Start()).To(Succeed())
		defer startCmd.Wait()

		Eventually(func() error {
			return exec.Command(binaryPath, "status", repoDir).Run()
		}, 3*time.Second, 100*time.Millisecond).Should(Succeed())

		writeFile(filepath.Join(repoDir, "while-disabled.txt"), "should not be committed yet\n")

		Consistently(func() uint64 {
			return commitsWritten(repoDir)
		}, 2*time.Second, 300*time.Millisecond).Should(Equal(uint64(0)))

		writeFile(filepath.Join(repoDir, ".autogit.json"), `{"interval_seconds":1,"exclude":[],"enabled":true}`)
		writeFile(filepath.Join(repoDir, "after-enabled.txt"), "should be committed\n")

		Eventually(func() uint64 {
			return commitsWritten(repoDir)
		}, 10*time.Second, 300*time.Millisecond).Should(BeNumerically(">=", uint64(1)))

		stopOut, err := exec.Command(binaryPath, "stop", repoDir).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "stop output: %s", string(stopOut))
	})
})
