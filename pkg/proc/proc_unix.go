//go:build unix

package proc

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Run starts cmd as a child and blocks until it exits or is killed.
//
// syscall.ForkExec creates the child with CLONE_VFORK on Linux, so the parent
// stays suspended until the child has exec'd or died. Stop and continue
// notifications are consumed and the wait resumes.
func (s System) Run(cmd Command) (Result, error) {
	if len(cmd) == 0 {
		return Result{}, &SysError{Op: "fork/exec", Command: cmd, Err: errEmptyCommand}
	}
	pid, err := syscall.ForkExec(cmd.Path(), cmd, &syscall.ProcAttr{
		Env:   s.environ(),
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()},
	})
	if err != nil {
		return Result{}, &SysError{Op: "fork/exec", Command: cmd, Err: err}
	}
	return wait(pid, cmd)
}

func wait(pid int, cmd Command) (Result, error) {
	for {
		var ws unix.WaitStatus
		if _, err := unix.Wait4(pid, &ws, unix.WUNTRACED|unix.WCONTINUED, nil); err != nil {
			if err == unix.EINTR {
				continue
			}
			return Result{}, &SysError{Op: "wait4", Command: cmd, Err: err}
		}
		switch {
		case ws.Exited():
			return Exited(ws.ExitStatus()), nil
		case ws.Signaled():
			return KilledBy(ws.Signal()), nil
		}
	}
}

// Exec replaces the current process image with cmd. It returns only when the
// replacement failed, and then always with a *SysError.
func (s System) Exec(cmd Command) error {
	if len(cmd) == 0 {
		return &SysError{Op: "execve", Command: cmd, Err: errEmptyCommand}
	}
	err := unix.Exec(cmd.Path(), cmd, s.environ())
	return &SysError{Op: "execve", Command: cmd, Err: err}
}
