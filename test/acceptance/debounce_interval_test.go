package acceptance_test

import (
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("debounce and minimum commit interval", func() {
	var tmpDir, repoDir string

	BeforeEach(func() {
		tmpDir, repoDir = newTempRepo("autogit-debounce")
		writeFile(filepath.Join(repoDir, ".autogit.json"), `{"interval_seconds":8,"exclude":[],"enabled":true}`)
	})

	AfterEach(func() {
		cleanupTestRepo(repoDir, tmpDir)
	})

	It("collapses a burst of saves into one commit, then withholds the next until the interval elapses", func() {
		startCmd := exec.Command(binaryPath, "start", repoDir)
		Expect(startCmd.Start()).To(Succeed())
		defer startCmd.Wait()

		Eventually(func() error {
			return exec.Command(binaryPath, "status", repoDir).Run()
		}, 3*time.Second, 100*time.Millisecond).Should(Succeed())

		for i := 0; i < 5; i++ {
			writeFile(filepath.Join(repoDir, "burst.txt"), "rev-"+strconv.Itoa(i)+"\n")
			time.Sleep(200 * time.Millisecond)
		}

		Eventually(func() uint64 {
			return commitsWritten(repoDir)
		}, 10*time.Second, 200*time.Millisecond).Should(Equal(uint64(1)))

		// A second burst started immediately after the first commit should
		// still be withheld until interval_seconds has elapsed: its batch
		// arrives after the 5s debounce window, but the 8s interval keeps
		// it pending past that point.
		writeFile(filepath.Join(repoDir, "burst.txt"), "rev-second\n")

		Consistently(func() uint64 {
			return commitsWritten(repoDir)
		}, 6*time.Second, 300*time.Millisecond).Should(Equal(uint64(1)))

		Eventually(func() uint64 {
			return commitsWritten(repoDir)
		}, 8*time.Second, 300*time.Millisecond).Should(Equal(uint64(2)))

		stopOut, err := exec.Command(binaryPath, "stop", repoDir).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "stop output: %s", string(stopOut))
	})
})

// commitsWritten parses "commits written: N" out of `autogitd status`.
func commitsWritten(repoDir string) uint64 {
	out, err := exec.Command(binaryPath, "status", repoDir).CombinedOutput()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "commits written:") {
			fields := strings.Fields(line)
			n, parseErr := strconv.ParseUint(fields[len(fields)-1], 10, 64)
			if parseErr == nil {
				return n
			}
		}
	}
	return 0
}
