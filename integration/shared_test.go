//go:build integration || database

package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	// sharedBinaryPath holds the path to a shared skillpulse binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// Provider fixtures for a mid-sized program.
const (
	metricsFixture = `{
  "metrics": {"totalLearners": 4586, "certifiedUsers": 1256, "learningUsers": 3000, "prospectUsers": 330,
              "retentionRate": 81.5, "avgProductsAdopted": 2.4, "avgUsageIncrease": 67, "totalCertsEarned": 1900},
  "certificationAnalytics": {"summary": {"overallPassRate": 80, "totalExamAttempts": 1700, "totalNoShows": 150}}
}`
	journeyFixture = `{
  "funnel": [
    {"stage": "Registered", "count": 4586},
    {"stage": "Learning", "count": 3000},
    {"stage": "Certified", "count": 1256}
  ],
  "avgTimeToCompletion": 45,
  "dropOffAnalysis": []
}`
	impactFixture = `{
  "productAdoption": [
    {"name": "GitHub Copilot", "before": 40, "after": 76},
    {"name": "GitHub Actions", "before": 30, "after": 48},
    {"name": "Advanced Security", "before": 10, "after": 30}
  ],
  "stageImpact": []
}`
	segmentCountsFixture = `{"all": 4586, "at_risk": 320, "rising_stars": 410, "ready_to_advance": 600, "inactive": 900, "high_value": 150}`
	learnersFixture      = `{
  "learners": [
    {"handle": "octocat", "learner_status": "Champion", "exams_passed": 3, "total_exams": 3, "last_activity": "2099-01-01"},
    {"handle": "hubot", "learner_status": "Learning", "exams_passed": 0, "total_exams": 2, "last_activity": ""}
  ],
  "total_count": 2,
  "limit": 25,
  "offset": 0
}`
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// startFakeProvider serves the fixtures on the provider endpoint paths.
func startFakeProvider(t *testing.T) string {
	t.Helper()
	fixtures := map[string]string{
		"/metrics":           metricsFixture,
		"/journey":           journeyFixture,
		"/impact":            impactFixture,
		"/segment-counts":    segmentCountsFixture,
		"/enriched-learners": learnersFixture,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := fixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// getBinary returns the path to the skillpulse binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "skillpulse-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "skillpulse")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build skillpulse: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runCommand runs the binary in dir and returns stdout.
// HOME points at dir so default SQLite files stay inside it.
func runCommand(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+dir)
	cmd.Env = append(cmd.Env, env...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), stderr.String())
	}
	return stdout.String(), err
}
