package executor

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/5l1v3r1/sw/internal/cmdgraph"
)

// CommandRunner actually executes one command's argv. Abstracted behind an
// interface so tests substitute a hand-written fake instead of spawning
// real processes.
type CommandRunner interface {
	Run(ctx context.Context, cmd *cmdgraph.CommandNode) (stderr string, err error)
}

// osRunner runs a command's argv as a real child process.
type osRunner struct{}

// NewOSRunner returns the default CommandRunner: os/exec.CommandContext
// against the command's own argv (already response-file-rewritten by
// cmdgraph if it was too long).
func NewOSRunner() CommandRunner { return osRunner{} }

func (osRunner) Run(ctx context.Context, cmd *cmdgraph.CommandNode) (string, error) {
	if len(cmd.Argv) == 0 {
		return "", nil
	}
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	err := c.Run()
	return stderr.String(), err
}
