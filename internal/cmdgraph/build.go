package cmdgraph

import (
	"context"
	"fmt"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/swerr"
	"github.com/5l1v3r1/sw/internal/target"
)

// Options configures graph construction.
type Options struct {
	// MaxArgvBytes is the response-file threshold. Zero means
	// DefaultMaxArgvBytes.
	MaxArgvBytes int
	// ResponseFileDir is the directory response files are written into.
	// Required only if at least one command's argv exceeds MaxArgvBytes.
	ResponseFileDir string
}

// DefaultMaxArgvBytes matches common Windows/POSIX practical command-line
// ceilings.
const DefaultMaxArgvBytes = 30000

// Build constructs a complete, validated command graph from the given
// targets' driver-produced commands, as a sequence of discrete named
// passes, each logged through ctxlog.FromContext(ctx).Debug.
func Build(ctx context.Context, targets []*target.Target, opts Options) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.MaxArgvBytes <= 0 {
		opts.MaxArgvBytes = DefaultMaxArgvBytes
	}

	logger.Debug("cmdgraph.Build: starting graph construction.")
	g := &Graph{
		files:    make(map[string]*FileNode),
		commands: make(map[string]*CommandNode),
	}

	createNodes(targets, g)
	logger.Debug("cmdgraph.Build: node creation complete.", "command_count", len(g.commands), "file_count", len(g.files))

	if err := linkNodes(g); err != nil {
		return nil, err
	}
	logger.Debug("cmdgraph.Build: node linking complete.")

	if err := applyResponseFiles(g, opts); err != nil {
		return nil, err
	}
	logger.Debug("cmdgraph.Build: response-file pass complete.")

	if err := detectCycles(g); err != nil {
		return nil, err
	}
	logger.Debug("cmdgraph.Build: cycle detection passed.")

	logger.Debug("cmdgraph.Build: graph construction successful.")
	return g, nil
}

// createNodes performs the first pass: one CommandNode per driver-produced
// command, and one FileNode per distinct path it references.
func createNodes(targets []*target.Target, g *Graph) {
	for _, t := range targets {
		for i, cmd := range t.Commands {
			id := fmt.Sprintf("%s#%d", t.Id.String(), i)
			node := &CommandNode{ID: id, TargetId: t.Id, Argv: append([]string(nil), cmd.Argv...), Env: cmd.Env}
			g.commands[id] = node

			for _, p := range cmd.Inputs {
				node.Inputs = append(node.Inputs, fileNode(g, p))
			}
			for _, p := range cmd.Outputs {
				node.Outputs = append(node.Outputs, fileNode(g, p))
			}
			for _, p := range cmd.Intermediates {
				node.Intermediates = append(node.Intermediates, fileNode(g, p))
			}
		}
	}
}

// fileNode returns the FileNode for path, creating it on first reference.
func fileNode(g *Graph, path string) *FileNode {
	f, ok := g.files[path]
	if !ok {
		f = &FileNode{Path: path}
		g.files[path] = f
	}
	return f
}

// linkNodes performs the second pass: wires each command's output/input
// file edges, rejecting a file claimed as output by more than one
// command.
func linkNodes(g *Graph) error {
	for _, cmd := range g.commands {
		for _, f := range cmd.Outputs {
			if f.Producer != nil && f.Producer != cmd {
				return swerr.New(swerr.DoubleProducer, f.Path, fmt.Errorf("produced by both %q and %q", f.Producer.ID, cmd.ID))
			}
			f.Producer = cmd
		}
		for _, f := range cmd.Intermediates {
			if f.Producer != nil && f.Producer != cmd {
				return swerr.New(swerr.DoubleProducer, f.Path, fmt.Errorf("produced by both %q and %q", f.Producer.ID, cmd.ID))
			}
			f.Producer = cmd
		}
	}
	for _, cmd := range g.commands {
		for _, f := range cmd.Inputs {
			f.Consumers = append(f.Consumers, cmd)
		}
	}
	return nil
}

// detectCycles walks the command graph (an edge from producer to consumer
// via a shared file) with a standard visiting/visited DFS.
func detectCycles(g *Graph) error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(cmd *CommandNode) error
	visit = func(cmd *CommandNode) error {
		visiting[cmd.ID] = true
		for _, f := range cmd.Inputs {
			dep := f.Producer
			if dep == nil {
				continue
			}
			if visiting[dep.ID] {
				return swerr.New(swerr.CircularCommandDependency, dep.ID, nil)
			}
			if !visited[dep.ID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, cmd.ID)
		visited[cmd.ID] = true
		return nil
	}

	for _, cmd := range g.commands {
		if !visited[cmd.ID] {
			if err := visit(cmd); err != nil {
				return err
			}
		}
	}
	return nil
}
