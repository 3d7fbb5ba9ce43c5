//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedTschartPath holds the path to a shared tschart binary built once for all tests.
	sharedTschartPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getTschartBinary returns the path to the tschart binary, building it once if needed.
func getTschartBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "tschart-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		tschartPath := filepath.Join(tempDir, "tschart")
		buildCmd := exec.Command("go", "build", "-o", tschartPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build tschart: %v", err))
		}

		sharedTschartPath = tschartPath
	})

	return sharedTschartPath
}

// runTschart runs the binary from the project root and returns its stdout.
func runTschart(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getTschartBinary(), args...)
	cmd.Dir = "../"
	output, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = exitErr.Stderr
		}
		t.Logf("Command failed: %s\nOutput: %s\nStderr: %s", cmd.String(), string(output), string(stderr))
		return "", err
	}
	return string(output), nil
}
