package launch

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"nilaunch-tools/go/pkg/logbowl"
	"nilaunch-tools/go/pkg/plan"
	"nilaunch-tools/go/pkg/proc"
	"nilaunch-tools/go/pkg/toolchain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	result proc.Result
	err    error
	ran    []proc.Command
}

func (f *fakeRunner) Run(cmd proc.Command) (proc.Result, error) {
	f.ran = append(f.ran, cmd)
	return f.result, f.err
}

type fakeReplacer struct {
	err  error
	seen []proc.Command
}

func (f *fakeReplacer) Exec(cmd proc.Command) error {
	f.seen = append(f.seen, cmd)
	return f.err
}

type fatalCall struct {
	domain  string
	message string
	fields  map[string]interface{}
}

type recordingSink struct {
	calls []fatalCall
}

func (s *recordingSink) Fatal(domain, action, status, message string, args ...interface{}) {
	fields := map[string]interface{}{}
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	s.calls = append(s.calls, fatalCall{domain: domain, message: message, fields: fields})
}

func newLauncher(r *fakeRunner, x *fakeReplacer) (*Launcher, *recordingSink) {
	sink := &recordingSink{}
	return &Launcher{Runner: r, Replacer: x, Sink: sink, Log: logbowl.New("test", io.Discard)}, sink
}

func javaPlan() plan.Plan {
	return plan.Build(toolchain.Default(), toolchain.Java, "App", []string{"Main.java"})
}

func TestLaunchCompilerFailureSkipsNativeImage(t *testing.T) {
	runner := &fakeRunner{result: proc.Exited(2)}
	replacer := &fakeReplacer{}
	l, sink := newLauncher(runner, replacer)

	status := l.Launch(javaPlan())

	assert.Equal(t, 2, status)
	assert.Empty(t, replacer.seen, "native-image must not be exec'd after a failed compile")
	assert.Empty(t, sink.calls, "a failed compile is propagated, not fatal")
}

func TestLaunchCompilerKilledBySignal(t *testing.T) {
	runner := &fakeRunner{result: proc.KilledBy(syscall.SIGKILL)}
	replacer := &fakeReplacer{}
	l, _ := newLauncher(runner, replacer)

	assert.Equal(t, 9, l.Launch(javaPlan()))
	assert.Empty(t, replacer.seen)
}

func TestLaunchHandsOverToNativeImage(t *testing.T) {
	p := javaPlan()
	runner := &fakeRunner{result: proc.Exited(0)}
	replacer := &fakeReplacer{err: &proc.SysError{Op: "execve", Command: p.NativeImage, Err: syscall.ENOENT}}
	l, sink := newLauncher(runner, replacer)

	status := l.Launch(p)

	require.Equal(t, []proc.Command{p.Compile}, runner.ran)
	require.Equal(t, []proc.Command{p.NativeImage}, replacer.seen)

	// A failed exec is always fatal and names the full command line.
	assert.Equal(t, FatalStatus, status)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "aot", sink.calls[0].domain)
	assert.Equal(t, "execve", sink.calls[0].fields["op"])
	assert.Equal(t, "/usr/lib/jvm/graalvm/bin/native-image -dsa -H:NumberOfThreads=1 -J-Xms512M -J-Xmx896M Main App", sink.calls[0].fields["command"])
}

func TestLaunchExecReturningNilIsFatal(t *testing.T) {
	l, sink := newLauncher(&fakeRunner{result: proc.Exited(0)}, &fakeReplacer{})

	assert.Equal(t, FatalStatus, l.Launch(javaPlan()))
	require.Len(t, sink.calls, 1)
	assert.True(t, errors.Is(sink.calls[0].fields["error"].(error), errReturned))
}

func TestLaunchRunnerFailureIsFatal(t *testing.T) {
	p := javaPlan()
	runner := &fakeRunner{err: &proc.SysError{Op: "fork/exec", Command: p.Compile, Err: syscall.EAGAIN}}
	replacer := &fakeReplacer{}
	l, sink := newLauncher(runner, replacer)

	assert.Equal(t, FatalStatus, l.Launch(p))
	assert.Empty(t, replacer.seen)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, "compiler", sink.calls[0].domain)
	assert.Equal(t, "fork/exec", sink.calls[0].fields["op"])
	assert.Equal(t, p.Compile.String(), sink.calls[0].fields["command"])
}

func TestLaunchWithRealProcesses(t *testing.T) {
	p := plan.Plan{
		Compile:     proc.Command{"/bin/sh", "-c", "exit 5"},
		NativeImage: proc.Command{"/nonexistent/native-image"},
	}
	replacer := &fakeReplacer{}
	sink := &recordingSink{}
	l := &Launcher{Runner: proc.System{}, Replacer: replacer, Sink: sink, Log: logbowl.New("test", io.Discard)}

	assert.Equal(t, 5, l.Launch(p))
	assert.Empty(t, replacer.seen)
	assert.Empty(t, sink.calls)
}
