// Package resolver implements the local-then-remote dependency resolution
// pass: a worklist of UnresolvedPackages is expanded against the service
// DB and the remote registry until closure, with conflicting pins and
// unsatisfiable ranges reported as typed errors.
//
// The worklist/closure shape runs as discrete named passes — local, then
// remote, then repeat until nothing new is discovered — logging through
// ctxlog at each step.
package resolver
