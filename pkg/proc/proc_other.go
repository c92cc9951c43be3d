//go:build !unix

package proc

import "errors"

func (s System) Run(cmd Command) (Result, error) {
	return Result{}, &SysError{Op: "fork/exec", Command: cmd, Err: errors.ErrUnsupported}
}

func (s System) Exec(cmd Command) error {
	return &SysError{Op: "execve", Command: cmd, Err: errors.ErrUnsupported}
}
