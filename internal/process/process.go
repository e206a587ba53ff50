package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Command configures an external tool invocation
type Command struct {
	// Binary is the executable path or name (resolved via PATH)
	Binary string
	Args   []string
	Dir    string

	// Env is appended to the parent environment (KEY=value)
	Env []string

	// Stdout receives a copy of the tool's standard output when set
	Stdout io.Writer

	// GracePeriod between SIGTERM and SIGKILL on cancellation (default 5s)
	GracePeriod time.Duration
}

// Result holds the captured output of a finished command
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// ExitError is returned when the command ran but exited non-zero
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit code %d", e.Binary, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Runner executes commands. It is an interface so callers can be tested
// without the real binaries installed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes cmd and waits for it to finish. On context cancellation the
// whole process group receives SIGTERM, then SIGKILL after GracePeriod.
func (ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	grace := cmd.GracePeriod
	if grace == 0 {
		grace = 5 * time.Second
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	if cmd.Stdout != nil {
		c.Stdout = io.MultiWriter(&stdout, cmd.Stdout)
	}
	c.Stderr = &stderr

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = grace

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: %s killed by context: %w", cmd.Binary, ctx.Err())
		}
		if result.ExitCode > 0 {
			return result, &ExitError{
				Binary:   cmd.Binary,
				ExitCode: result.ExitCode,
				Stderr:   lastLine(result.Stderr),
			}
		}
		return result, fmt.Errorf("process: run %s: %w", cmd.Binary, err)
	}

	return result, nil
}

// LookPath reports whether binary can be executed
func LookPath(binary string) error {
	_, err := exec.LookPath(binary)
	return err
}

// lastLine keeps error messages short: tools like ffmpeg print a banner first
func lastLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
