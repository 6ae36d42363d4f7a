// Package cmdgraph builds the bipartite file/command DAG from a set of
// prepared targets: left nodes are files, right nodes are commands, and
// edges run file→command for an input and command→file for an output.
// Build runs as a multi-pass pipeline with named passes logged through
// ctxlog, and cycle detection uses a DFS with a visiting/visited map.
package cmdgraph
