package sys

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Command is an external program invocation. It is run directly, never
// through a shell.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Outcome is what a finished command left behind: its exit code and its
// combined stdout/stderr split into lines.
type Outcome struct {
	ExitCode int
	Lines    []string
}

// Runner executes commands. Implementations block until the command exits
// and make a single attempt.
type Runner interface {
	Run(cmd Command) (Outcome, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes c and captures stdout and stderr through one buffer, so lines
// keep the order the two streams were written in. The returned error is
// non-nil only if the process could not be started; a non-zero exit is
// reported through Outcome.ExitCode.
func (r *ExecRunner) Run(c Command) (Outcome, error) {
	r.logger.Sugar().Debugf("running %q", c.String())

	cmd := exec.Command(c.Name, c.Args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()

	out := Outcome{Lines: splitLines(buf.String())}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("running %q: %w", c.String(), err)
		}
		out.ExitCode = exitErr.ExitCode()
	}
	if out.ExitCode != 0 {
		r.logger.Sugar().Warnf("non-zero exit status %d for %q: %s",
			out.ExitCode, c.String(), strings.Join(out.Lines, "\n"))
	}
	return out, nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
