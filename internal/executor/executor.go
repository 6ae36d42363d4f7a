package executor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/5l1v3r1/sw/internal/cmdgraph"
	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/swerr"
)

// cmdState is the executor's own mutable runtime state for one command
// node, kept separate from cmdgraph.CommandNode, which stays immutable
// once the graph is built.
type cmdState struct {
	node *cmdgraph.CommandNode

	status   atomic.Int32
	depCount atomic.Int32

	dependents []*cmdState
	skipOnce   sync.Once

	mu     sync.Mutex
	err    error
	stderr string
}

func (s *cmdState) setResult(status Status, err error, stderr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Store(int32(status))
	s.err = err
	s.stderr = stderr
}

// Result is one command's outcome, reported in the post-run Summary.
type Result struct {
	CommandID string
	Status    Status
	Err       error
	Stderr    string
}

// Summary is the build-completion report: a per-command diagnostic block
// plus a summary of command counts by status.
type Summary struct {
	Results []Result
}

// Counts tallies results by status.
func (s Summary) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, r := range s.Results {
		out[r.Status]++
	}
	return out
}

// Failed reports whether any command in the summary failed (directly, not
// merely poisoned or skipped) — the build's own exit code follows this.
func (s Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Options configures an Executor.
type Options struct {
	// Workers sizes the worker pool. Zero means runtime.NumCPU().
	Workers int
	// CommandTimeout is applied to every command's context, if nonzero.
	// Zero means no timeout.
	CommandTimeout time.Duration
	// ExplainOutdated logs which up-to-date predicate failed for each
	// out-of-date command.
	ExplainOutdated bool
}

// Executor runs a cmdgraph.Graph to completion: a buffered ready channel
// seeded with zero-dependency nodes, a fixed worker pool draining it, and
// a WaitGroup sized to the total node count.
type Executor struct {
	graph  *cmdgraph.Graph
	db     ServiceDB
	runner CommandRunner
	opts   Options
	states map[string]*cmdState
	wg     sync.WaitGroup
}

// New builds an Executor over graph. db and runner must be non-nil.
func New(graph *cmdgraph.Graph, db ServiceDB, runner CommandRunner, opts Options) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	e := &Executor{graph: graph, db: db, runner: runner, opts: opts}
	e.buildStates()
	return e
}

// buildStates derives the executor's dependency graph (command → command,
// via shared files) from the immutable cmdgraph.Graph.
func (e *Executor) buildStates() {
	nodes := e.graph.Commands()
	e.states = make(map[string]*cmdState, len(nodes))
	for _, n := range nodes {
		e.states[n.ID] = &cmdState{node: n}
	}

	for _, n := range nodes {
		st := e.states[n.ID]
		deps := make(map[string]bool)
		for _, f := range n.Inputs {
			if f.Producer == nil || f.Producer.ID == n.ID {
				continue
			}
			deps[f.Producer.ID] = true
		}
		st.depCount.Store(int32(len(deps)))
		for depID := range deps {
			e.states[depID].dependents = append(e.states[depID].dependents, st)
		}
	}
}

// Run executes every command in the graph, respecting ctx's cancellation.
// Containment: a failing command poisons only its own transitive
// dependents; unrelated branches run to completion.
func (e *Executor) Run(ctx context.Context) (Summary, error) {
	logger := ctxlog.FromContext(ctx)

	if len(e.states) == 0 {
		return Summary{}, nil
	}

	ready := make(chan *cmdState, len(e.states))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, st := range e.states {
		if st.depCount.Load() == 0 {
			ready <- st
		}
	}

	e.wg.Add(len(e.states))
	for i := 0; i < e.opts.Workers; i++ {
		go e.worker(runCtx, logger, ready, i)
	}

	e.wg.Wait()
	close(ready)

	summary := Summary{}
	for _, st := range e.statesInOrder() {
		summary.Results = append(summary.Results, Result{
			CommandID: st.node.ID,
			Status:    Status(st.status.Load()),
			Err:       st.err,
			Stderr:    st.stderr,
		})
	}

	if ctx.Err() != nil {
		return summary, swerr.New(swerr.Interrupted, "", ctx.Err())
	}
	return summary, nil
}

// statesInOrder returns states sorted by command ID for deterministic
// Summary output.
func (e *Executor) statesInOrder() []*cmdState {
	out := make([]*cmdState, 0, len(e.states))
	for _, st := range e.states {
		out = append(out, st)
	}
	sortStates(out)
	return out
}
