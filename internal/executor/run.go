package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/5l1v3r1/sw/internal/swerr"
)

// worker drains the ready channel until it is closed, running each command
// in turn: pick up a node, run it, unlock dependents whose depCount
// reaches zero, mark the WaitGroup done exactly once per node either way.
func (e *Executor) worker(ctx context.Context, logger *slog.Logger, ready chan *cmdState, workerID int) {
	for st := range ready {
		workerLogger := logger.With("worker_id", workerID, "command_id", st.node.ID)

		if ctx.Err() != nil {
			st.skipOnce.Do(func() {
				workerLogger.Warn("context canceled, skipping command")
				st.setResult(StatusSkipped, ctx.Err(), "")
				e.wg.Done()
			})
			continue
		}

		st.status.Store(int32(StatusRunning))
		e.runOne(ctx, workerLogger, st)

		for _, dep := range st.dependents {
			if dep.depCount.Add(-1) == 0 && Status(dep.status.Load()) == StatusPending {
				ready <- dep
			}
		}
		e.wg.Done()
	}
}

// runOne decides whether st is up-to-date, runs it if not, and on failure
// poisons every transitive dependent.
func (e *Executor) runOne(ctx context.Context, logger *slog.Logger, st *cmdState) {
	upToDate, reason, hash, err := checkUpToDate(e.db, st.node)
	if err != nil {
		st.setResult(StatusFailed, fmt.Errorf("executor: up-to-date check for %q: %w", st.node.ID, err), "")
		e.poisonDependents(st)
		return
	}
	if upToDate {
		logger.Debug("command is up to date")
		st.setResult(StatusUpToDate, nil, "")
		return
	}
	if e.opts.ExplainOutdated {
		logger.Debug("command is out of date", "reason", string(reason))
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if e.opts.CommandTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.opts.CommandTimeout)
		defer cancel()
	}

	logger.Debug("running command", "argv", formatArgv(st.node.Argv))
	stderr, runErr := e.runner.Run(runCtx, st.node)
	if runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			st.setResult(StatusFailed, swerr.New(swerr.CommandTimeout, st.node.ID, runErr), stderr)
		} else {
			exitCode := exitCodeOf(runErr)
			failure := &swerr.CommandFailure{CommandID: st.node.ID, ExitCode: exitCode, Stderr: stderr}
			st.setResult(StatusFailed, swerr.New(swerr.CommandFailed, st.node.ID, failure), stderr)
		}
		logger.Error("command failed", "stderr_tail", tail(stderr, 2000))
		e.poisonDependents(st)
		return
	}

	if err := e.db.RecordCommandHash(hash, time.Now().Unix()); err != nil {
		st.setResult(StatusFailed, fmt.Errorf("executor: recording command hash for %q: %w", st.node.ID, err), stderr)
		e.poisonDependents(st)
		return
	}
	st.setResult(StatusSucceeded, nil, stderr)
}

// poisonDependents marks every transitive dependent of a failed command as
// Poisoned and releases its WaitGroup slot, without running it. Sibling
// branches that don't depend on st are never touched.
func (e *Executor) poisonDependents(st *cmdState) {
	for _, dep := range st.dependents {
		dep.skipOnce.Do(func() {
			dep.setResult(StatusPoisoned, swerr.New(swerr.Poisoned, dep.node.ID, fmt.Errorf("not built due to %q", st.node.ID)), "")
			e.wg.Done()
			e.poisonDependents(dep)
		})
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
