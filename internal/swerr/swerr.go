// Package swerr defines the error taxonomy shared by every subsystem: the
// resolver, storage, load, graph, execution, and control error kinds.
// Callers test for a Kind with Of (or errors.Is against an *Error built
// by New, which matches on Kind alone), and unwrap the cause chain with
// errors.As/errors.Unwrap in the usual way.
package swerr

import "fmt"

// Kind identifies which subsystem raised an error and lets callers branch on
// it without depending on the exact wrapped message.
type Kind string

const (
	// Resolution errors.
	UnresolvableDependency Kind = "unresolvable_dependency"
	ConflictingPins        Kind = "conflicting_pins"
	RegistryUnreachable    Kind = "registry_unreachable"

	// Storage errors.
	HashMismatch   Kind = "hash_mismatch"
	ArchiveCorrupt Kind = "archive_corrupt"
	InstallConflict Kind = "install_conflict"

	// Load errors.
	NoDriverForInput  Kind = "no_driver_for_input"
	DriverLoadFailed  Kind = "driver_load_failed"
	TargetRedefinition Kind = "target_redefinition"

	// Graph errors.
	CircularCommandDependency Kind = "circular_command_dependency"
	DoubleProducer            Kind = "double_producer"

	// Execution errors.
	CommandFailed  Kind = "command_failed"
	CommandTimeout Kind = "command_timeout"
	Poisoned       Kind = "poisoned"

	// Control errors.
	Interrupted   Kind = "interrupted"
	Unimplemented Kind = "unimplemented"
)

// Error is the concrete error type carried through the system. Subject
// identifies the entity the error is about (a package path, a command ID,
// a file path); it is optional context, not the whole message.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Subject)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, swerr.New(kind, "", nil)) match on Kind alone,
// ignoring Subject and the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error for the given kind, subject, and cause. Subject and
// cause may be zero-valued.
func New(kind Kind, subject string, cause error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: cause}
}

// Of reports whether err (or something it wraps) has the given Kind.
func Of(err error, kind Kind) bool {
	return errorsIs(err, &Error{Kind: kind})
}

// errorsIs walks err's single-cause Unwrap chain and reports whether any
// *Error in it matches target's Kind. An error that wraps several causes
// (Unwrap() []error) ends the walk.
func errorsIs(err, target error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Is(target) {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// CommandFailure carries the exit code and captured stderr tail for a
// failed command.
type CommandFailure struct {
	CommandID string
	ExitCode  int
	Stderr    string
}

func (e *CommandFailure) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d", e.CommandID, e.ExitCode)
}
