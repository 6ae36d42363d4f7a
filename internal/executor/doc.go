// Package executor runs a cmdgraph.Graph to completion: an up-to-date
// check per command, a bounded worker pool over the ready frontier,
// failure containment by poisoning dependents, optional per-command
// timeouts, and cooperative cancellation.
//
// One design choice worth calling out: on a command failure this executor
// poisons only that command's own transitive dependents rather than
// cancelling the whole run — unrelated branches keep running to
// completion instead of being aborted alongside the failure.
package executor
