package executor

import "os/exec"

// exitCodeOf extracts a subprocess exit code from the error os/exec
// returns, or -1 if err isn't an *exec.ExitError (e.g. the process could
// not be started at all).
func exitCodeOf(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
