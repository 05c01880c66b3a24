package acceptance_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("foreign git lock backoff", func() {
	var tmpDir, repoDir string

	BeforeEach(func() {
		tmpDir, repoDir = newTempRepo("autogit-lock")
		writeFile(filepath.Join(repoDir, ".autogit.json"), `{"interval_seconds":1,"exclude":[],"enabled":true}`)
	})

	AfterEach(func() {
		cleanupTestRepo(repoDir, tmpDir)
	})

	It("waits out a transient foreign index.lock and still commits once it's released", func() {
		lockPath := filepath.Join(repoDir, ".git", "index.lock")
		Expect(os.WriteFile(lockPath, []byte(""), 0644)).To(Succeed())

		startCmd := exec.Command(binaryPath, "start", repoDir)
		Expect(startCmd.Start()).To(Succeed())
		defer startCmd.Wait()

		Eventually(func() error {
			return exec.Command(binaryPath, "status", repoDir).Run()
		}, 3*time.Second, 100*time.Millisecond).Should(Succeed())

		writeFile(filepath.Join(repoDir, "locked.txt"), "while foreign lock held\n")

		// The batch reaches the commit step after the 5s debounce window,
		// while the lock is still held; release it well within the
		// lock-wait budget (LockMaxRetries * LockRetrySleep = 10s) so the
		// pending batch still gets committed rather than discarded.
		time.Sleep(8 * time.Second)
		Expect(os.Remove(lockPath)).To(Succeed())

		Eventually(func() uint64 {
			return commitsWritten(repoDir)
		}, 15*time.Second, 300*time.Millisecond).Should(BeNumerically(">=", uint64(1)))

		stopOut, err := exec.Command(binaryPath, "stop", repoDir).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "stop output: %s", string(stopOut))
	})

	It("logs to .autogit.log and gives up cleanly when the foreign lock never clears", func() {
		lockPath := filepath.Join(repoDir, ".git", "index.lock")
		Expect(os.WriteFile(lockPath, []byte(""), 0644)).To(Succeed())

		startCmd := exec.Command(binaryPath, "start", repoDir)
		Expect(startCmd.Start()).To(Succeed())
		defer startCmd.Wait()

		Eventually(func() error {
			return exec.Command(binaryPath, "status", repoDir).Run()
		}, 3*time.Second, 100*time.Millisecond).Should(Succeed())

		writeFile(filepath.Join(repoDir, "stuck.txt"), "blocked indefinitely\n")

		Eventually(func() bool {
			data, err := os.ReadFile(filepath.Join(repoDir, ".autogit.log"))
			return err == nil && len(data) > 0
		}, 20*time.Second, 300*time.Millisecond).Should(BeTrue())

		Eventually(func() string {
			out, _ := exec.Command(binaryPath, "status", repoDir).CombinedOutput()
			return string(out)
		}, 15*time.Second, 300*time.Millisecond).Should(ContainSubstring("persists after retries"))

		stopOut, err := exec.Command(binaryPath, "stop", repoDir).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "stop output: %s", string(stopOut))

		Expect(os.Remove(lockPath)).To(Succeed())
	})
})
