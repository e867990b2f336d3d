package helpers

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// ExecInContainer runs command inside containerName through docker exec, passing envVars
// as -e flags. It returns stdout and stderr separately.
func ExecInContainer(containerName string, command []string, envVars ...string) (string, string, error) {
	cmdLine := make([]string, 0, 3+len(command)+2*len(envVars))
	cmdLine = append(cmdLine, "exec", "-i")
	for _, envVar := range envVars {
		cmdLine = append(cmdLine, "-e", envVar)
	}
	cmdLine = append(cmdLine, containerName)
	cmdLine = append(cmdLine, command...)

	log.Debugf("executing: docker %s", strings.Join(cmdLine, " "))

	cmd := exec.Command("docker", cmdLine...)
	var outbuf, errbuf bytes.Buffer
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf

	err := cmd.Run()
	return outbuf.String(), errbuf.String(), err
}

// WaitForPort polls from inside containerName until host:port accepts connections.
func WaitForPort(containerName, host string, port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	probe := []string{"sh", "-c", fmt.Sprintf("nc -z %s %d", host, port)}
	for time.Now().Before(deadline) {
		if _, _, err := ExecInContainer(containerName, probe); err == nil {
			log.Debugf("%s:%d is reachable from %s", host, port, containerName)
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("timed out after %v waiting for %s:%d", timeout, host, port)
}

func GetTestName(t *testing.T) string {
	return t.Name()
}

// AssertReceivedErrors checks that msg appears in at least one of the stderr lines.
func AssertReceivedErrors(t *testing.T, msg string, errLog ...string) {
	t.Helper()
	for _, line := range errLog {
		if strings.Contains(line, msg) {
			return
		}
	}
	assert.Failf(t, "expected error not found", "%q was not logged; stderr:\n%s", msg, strings.Join(errLog, "\n"))
}
