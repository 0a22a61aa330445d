//go:build integration
// +build integration

package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const (
	// Dummy link created for the netlink run
	dummyLink = "nstest0"

	staticIP   = "192.0.2.10"
	staticCIDR = staticIP + "/24"
	secondCIDR = "192.0.2.11/24"
)

type runResult struct {
	Changed   bool            `json:"changed"`
	State     json.RawMessage `json:"state"`
	DebugFile string          `json:"debugfile"`
}

// TestSnapshotBackendIntegration runs the built binary against a state document on disk
func TestSnapshotBackendIntegration(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()

	stateFile := filepath.Join(dir, "state.yml")
	if err := os.WriteFile(stateFile, []byte("interfaces:\n  - name: eth0\n    type: ethernet\n    state: up\n"), 0644); err != nil {
		t.Fatalf("Failed to write state file: %v", err)
	}

	env := []string{
		"NETSTATE_BACKEND=snapshot",
		"NETSTATE_STATE_FILE=" + stateFile,
		"NETSTATE_JOURNAL=" + filepath.Join(dir, "journal.db"),
		"NETSTATE_DEBUG_DIR=" + dir,
	}

	t.Run("Check_Mode_Does_Not_Write", func(t *testing.T) {
		before, _ := os.ReadFile(stateFile)
		result := runCommand(t, binary, env, "l3-interface", "--name", "eth0", "--ipv4", staticCIDR, "--check")
		if !result.Changed {
			t.Errorf("Expected check mode to report a change")
		}
		after, _ := os.ReadFile(stateFile)
		if !bytes.Equal(before, after) {
			t.Errorf("State file changed in check mode")
		}
	})

	t.Run("Add_Address", func(t *testing.T) {
		result := runCommand(t, binary, env, "l3-interface", "--name", "eth0", "--ipv4", staticCIDR, "--debug")
		if !result.Changed {
			t.Errorf("Expected first run to report a change")
		}
		if !strings.Contains(string(result.State), staticIP) {
			t.Errorf("Address %s missing from state: %s", staticIP, result.State)
		}
		if !strings.HasPrefix(filepath.Base(result.DebugFile), "l3_interface_debug-") {
			t.Errorf("Unexpected debug file %q", result.DebugFile)
		}
	})

	t.Run("Second_Run_Is_Idempotent", func(t *testing.T) {
		result := runCommand(t, binary, env, "l3-interface", "--name", "eth0", "--ipv4", staticCIDR)
		if result.Changed {
			t.Errorf("Expected second run to report no change")
		}
	})

	t.Run("Purge_Replaces_Addresses", func(t *testing.T) {
		result := runCommand(t, binary, env, "l3-interface", "--name", "eth0", "--ipv4", secondCIDR, "--purge")
		if !result.Changed {
			t.Errorf("Expected purge to report a change")
		}
		if strings.Contains(string(result.State), staticIP+"\"") {
			t.Errorf("Address %s still present after purge: %s", staticIP, result.State)
		}
	})

	t.Run("Unknown_Interface_Fails", func(t *testing.T) {
		cmd := exec.Command(binary, "l3-interface", "--name", "eth9", "--ipv4", staticCIDR)
		cmd.Env = append(os.Environ(), env...)
		if err := cmd.Run(); err == nil {
			t.Errorf("Expected non-zero exit for unknown interface")
		}
	})

	t.Run("History_Lists_Runs", func(t *testing.T) {
		output := runRaw(t, binary, env, "history", "--limit", "0")
		var entries []map[string]interface{}
		if err := json.Unmarshal(output, &entries); err != nil {
			t.Fatalf("Failed to parse history: %v\n%s", err, output)
		}
		if len(entries) != 5 {
			t.Errorf("Expected 5 recorded runs, got %d", len(entries))
		}
	})
}

// TestNetlinkBackendIntegration configures a dummy link on the host. It needs root.
func TestNetlinkBackendIntegration(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("netlink integration test requires root")
	}
	if _, err := exec.LookPath("ip"); err != nil {
		t.Skip("ip command not available")
	}

	binary := buildBinary(t)
	env := []string{"NETSTATE_BACKEND=netlink"}

	if err := exec.Command("ip", "link", "add", dummyLink, "type", "dummy").Run(); err != nil {
		t.Fatalf("Failed to create dummy link: %v", err)
	}
	t.Cleanup(func() {
		_ = exec.Command("ip", "link", "del", dummyLink).Run()
	})

	t.Run("Static_IP_Configuration", func(t *testing.T) {
		result := runCommand(t, binary, env, "l3-interface", "--name", dummyLink, "--ipv4", staticCIDR)
		if !result.Changed {
			t.Errorf("Expected a change")
		}

		actual, err := getActualIP(dummyLink)
		if err != nil {
			t.Fatalf("Failed to read address: %v", err)
		}
		t.Logf("Actual IP on %s: %s (expected: %s)", dummyLink, actual, staticIP)
		if actual != staticIP {
			t.Errorf("IP mismatch: expected %s, got %s", staticIP, actual)
		}
	})

	t.Run("Link_Settings", func(t *testing.T) {
		result := runCommand(t, binary, env, "interface", "--name", dummyLink, "--mtu", "1400", "--description", "integration")
		if !result.Changed {
			t.Errorf("Expected a change")
		}
		output, err := exec.Command("ip", "link", "show", dummyLink).Output()
		if err != nil {
			t.Fatalf("Failed to show link: %v", err)
		}
		if !strings.Contains(string(output), "mtu 1400") {
			t.Errorf("MTU not applied: %s", output)
		}
	})

	t.Run("Remove_Link", func(t *testing.T) {
		runCommand(t, binary, env, "interface", "--name", dummyLink, "--state", "absent")
		if err := exec.Command("ip", "link", "show", dummyLink).Run(); err == nil {
			t.Errorf("Link %s still exists", dummyLink)
		}
	})
}

// buildBinary compiles the command into a temporary directory
func buildBinary(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "golang-netstate")
	cmd := exec.Command("go", "build", "-o", binary, ".")
	cmd.Dir = filepath.Join("..") // Go up one directory to project root
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, output)
	}
	return binary
}

func runRaw(t *testing.T, binary string, env []string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Env = append(os.Environ(), env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("%s failed: %v\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return output
}

func runCommand(t *testing.T, binary string, env []string, args ...string) runResult {
	t.Helper()
	output := runRaw(t, binary, env, args...)
	var result runResult
	if err := json.Unmarshal(output, &result); err != nil {
		t.Fatalf("Failed to parse result: %v\n%s", err, output)
	}
	return result
}

// getActualIP retrieves the first IPv4 address configured on an interface
func getActualIP(interfaceName string) (string, error) {
	output, err := exec.Command("ip", "addr", "show", interfaceName).Output()
	if err != nil {
		return "", fmt.Errorf("failed to get interface info for %s: %w", interfaceName, err)
	}

	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		// Line like "inet 192.0.2.10/24 scope global nstest0"
		if len(fields) > 1 && fields[0] == "inet" {
			return strings.Split(fields[1], "/")[0], nil
		}
	}

	return "", fmt.Errorf("no IP address found on interface %s", interfaceName)
}
