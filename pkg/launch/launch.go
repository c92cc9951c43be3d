// Package launch drives a build plan through its two stages: the front-end
// compiler runs as a child, then native-image replaces this process.
package launch

import (
	"errors"

	"nilaunch-tools/go/pkg/logbowl"
	"nilaunch-tools/go/pkg/plan"
	"nilaunch-tools/go/pkg/proc"
)

// FatalStatus is returned by Launch after a fatal diagnostic whose Sink did
// not terminate the process.
const FatalStatus = logbowl.FatalExitCode

// Runner executes a command as a child and waits for it.
type Runner interface {
	Run(cmd proc.Command) (proc.Result, error)
}

// Replacer replaces the current process with a command. It only returns on
// failure.
type Replacer interface {
	Exec(cmd proc.Command) error
}

// Sink receives fatal diagnostics. Production sinks terminate the process.
type Sink interface {
	Fatal(domain, action, status, message string, args ...interface{})
}

var errReturned = errors.New("exec returned without replacing the process")

// Launcher wires the stages to their process primitives.
type Launcher struct {
	Runner   Runner
	Replacer Replacer
	Sink     Sink
	Log      logbowl.Logger
}

// New returns a Launcher backed by real processes that aborts through log.
func New(log logbowl.Logger) *Launcher {
	return &Launcher{Runner: proc.System{}, Replacer: proc.System{}, Sink: log, Log: log}
}

// Launch runs the front-end compiler and, if it succeeds, execs native-image.
// It returns only when the build did not hand over to native-image: the
// front-end status when the compiler failed, FatalStatus otherwise.
func (l *Launcher) Launch(p plan.Plan) int {
	l.Log.Debug("compiler", "execute", "progress", "Running front-end compiler", "language", p.Language.String(), "command", p.Compile.String())
	res, err := l.Runner.Run(p.Compile)
	if err != nil {
		return l.fatal("compiler", "Could not run front-end compiler", err)
	}
	if status := res.Status(); status != 0 {
		l.Log.Debug("compiler", "finish", "failure", "Front-end compiler failed", "result", res.String())
		return status
	}

	l.Log.Debug("aot", "exec", "progress", "Handing over to native-image", "target", p.Target, "command", p.NativeImage.String())
	err = l.Replacer.Exec(p.NativeImage)
	if err == nil {
		err = &proc.SysError{Op: "execve", Command: p.NativeImage, Err: errReturned}
	}
	return l.fatal("aot", "Failed to execve native-image", err)
}

func (l *Launcher) fatal(domain, message string, err error) int {
	args := []interface{}{"error", err}
	var sysErr *proc.SysError
	if errors.As(err, &sysErr) {
		args = append(args, "op", sysErr.Op, "command", sysErr.Command.String())
	}
	l.Sink.Fatal(domain, "execute", "error", message, args...)
	return FatalStatus
}
