// Package proc runs compiler stages: either as a child the caller waits for,
// or by replacing the calling process image.
package proc

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Command is a program path followed by its arguments.
type Command []string

// Path is the executable, the first token.
func (c Command) Path() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// String renders the command line the way diagnostics report it.
func (c Command) String() string {
	return strings.Join(c, " ")
}

var errEmptyCommand = errors.New("empty command")

// SysError reports that the operating system could not create, wait for or
// exec a process. It is never a property of the child's own outcome.
type SysError struct {
	Op      string // "fork/exec", "wait4" or "execve"
	Command Command
	Err     error
}

func (e *SysError) Error() string {
	return fmt.Sprintf("%s `%s`: %v", e.Op, e.Command, e.Err)
}

func (e *SysError) Unwrap() error { return e.Err }

// Result is the outcome of a completed child: it either exited with a code or
// was terminated by a signal.
type Result struct {
	ExitCode int
	Signal   syscall.Signal // non-zero when the child was killed
}

// Exited returns the Result of a child that exited with code.
func Exited(code int) Result { return Result{ExitCode: code} }

// KilledBy returns the Result of a child terminated by sig.
func KilledBy(sig syscall.Signal) Result { return Result{Signal: sig} }

// Signaled reports whether the child was terminated by a signal.
func (r Result) Signaled() bool { return r.Signal != 0 }

// Status maps the Result to an integer: the exit code, or the signal number.
func (r Result) Status() int {
	if r.Signaled() {
		return int(r.Signal)
	}
	return r.ExitCode
}

func (r Result) String() string {
	if r.Signaled() {
		return fmt.Sprintf("signal %d (%v)", int(r.Signal), r.Signal)
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}

// System runs commands as real processes. A nil Env passes the full
// environment of the current process.
type System struct {
	Env []string
}

func (s System) environ() []string {
	if s.Env == nil {
		return os.Environ()
	}
	return s.Env
}
