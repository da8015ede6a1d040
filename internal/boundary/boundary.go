// Package boundary is the single place where failures are classified and
// reported. It wraps one top-level call, maps its outcome to an exit code and
// decides whether the debug log survives the process.
package boundary

import (
	"fmt"
	"runtime/debug"

	"github.com/backmassage/ytsub/internal/failure"
)

// IssueURL is where users are asked to report internal failures.
const IssueURL = "https://github.com/backmassage/ytsub/issues"

// UncaughtHeader prefixes the logged internal failure.
const UncaughtHeader = "An uncaught error occurred:"

// UncaughtFollowUp is the fixed message shown after an internal failure. The
// single %s is the debug log path.
const UncaughtFollowUp = "Please upload the error log file '%s' and make a Github issue at " +
	IssueURL + " with your config and command/subscription yaml file to reproduce. " +
	"Thanks for trying ytsub!"

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// State is the boundary's lifecycle state.
type State int

const (
	Running State = iota
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Reporter is the slice of the logger the boundary needs. Defined here so
// tests can substitute a mock.
type Reporter interface {
	Error(format string, args ...any)
	Warn(format string, args ...any)
	Exception(err error, format string, args ...any)
	DebugLogPath() string
	Cleanup(deleteDebugFile bool) error
}

// Boundary runs one call and finalizes the process outcome.
type Boundary struct {
	log   Reporter
	state State
	err   error
}

// New returns a boundary in the Running state. The reporter's debug log must
// already be open.
func New(log Reporter) *Boundary {
	return &Boundary{log: log, state: Running}
}

// State returns the current state.
func (b *Boundary) State() State { return b.state }

// Err returns the failure that ended the run, if any.
func (b *Boundary) Err() error { return b.err }

// Run calls fn and returns the process exit code. Panics inside fn are
// treated as internal failures.
func (b *Boundary) Run(fn func() error) int {
	err := call(fn)
	if err == nil {
		b.state = Succeeded
		if cerr := b.log.Cleanup(true); cerr != nil {
			b.log.Warn("could not remove debug log %s: %v", b.log.DebugLogPath(), cerr)
		}
		return ExitSuccess
	}

	b.state = Failed
	b.err = err
	if failure.IsValidation(err) {
		b.log.Error("%s", err)
	} else {
		b.log.Exception(err, UncaughtHeader)
		b.log.Error(UncaughtFollowUp, b.log.DebugLogPath())
	}
	_ = b.log.Cleanup(false)
	return ExitFailure
}

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.Internal(fmt.Errorf("panic: %v\n%s", r, debug.Stack()), "unexpected panic")
		}
	}()
	return fn()
}
