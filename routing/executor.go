package routing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/songgao/wgroutes/config"
	"github.com/songgao/wgroutes/sys"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrMutationFailed is matched by every *MutationError.
var ErrMutationFailed = errors.New("route mutation failed")

// MutationError carries the command and its full output for a rejected
// mutation. Err is set when the command could not be started at all.
type MutationError struct {
	Op      MutationOp
	Command string
	Outcome sys.Outcome
	Err     error
}

func (e *MutationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s failed (exit status %d): %s",
		e.Command, e.Outcome.ExitCode, strings.Join(e.Outcome.Lines, "\n"))
}

func (e *MutationError) Unwrap() error { return e.Err }

func (e *MutationError) Is(target error) bool { return target == ErrMutationFailed }

// MutationResult is the result of applying one MutationOp.
type MutationResult struct {
	Op             MutationOp
	Outcome        sys.Outcome
	Classification Classification
	// Err is a *MutationError when Classification is Failed.
	Err error
}

// Executor applies mutation operations through a sys.Runner.
type Executor struct {
	logger *zap.Logger
	runner sys.Runner
}

// NewExecutor returns an Executor that runs route commands with runner.
func NewExecutor(logger *zap.Logger, runner sys.Runner) *Executor {
	return &Executor{logger: logger, runner: runner}
}

// Apply runs op once and classifies the result.
func (e *Executor) Apply(op MutationOp) MutationResult {
	cmd := op.Command()
	e.logger.Sugar().Infof("running cmd: %q", cmd.String())

	res := MutationResult{Op: op}
	out, err := e.runner.Run(cmd)
	res.Outcome = out
	if err != nil {
		res.Classification = Failed
		res.Err = &MutationError{Op: op, Command: cmd.String(), Outcome: out, Err: err}
		e.logger.Sugar().Errorf("%v", res.Err)
		return res
	}

	res.Classification = Classify(op.Action, out.ExitCode, out.Lines)
	switch res.Classification {
	case Failed:
		res.Err = &MutationError{Op: op, Command: cmd.String(), Outcome: out}
		e.logger.Sugar().Errorf("%v", res.Err)
	case AlreadyPresent, AlreadyAbsent:
		e.logger.Sugar().Infof("%s: %s", op.Route, res.Classification)
		for _, line := range out.Lines {
			e.logger.Sugar().Debugf("  %s", line)
		}
	default:
		e.logger.Sugar().Debugf("%s: %s", op, res.Classification)
	}
	return res
}

// ApplyAll applies ops one after another in order. A failed operation does
// not stop the ones after it; nothing is rolled back.
func (e *Executor) ApplyAll(ops []MutationOp) []MutationResult {
	e.logger.Debug("+ ApplyAll")
	defer e.logger.Debug("- ApplyAll")

	results := make([]MutationResult, 0, len(ops))
	for _, op := range ops {
		results = append(results, e.Apply(op))
	}
	return results
}

// Transition plans d for cfg and applies the plan.
func (e *Executor) Transition(d Direction, cfg config.Config) []MutationResult {
	e.logger.Sugar().Debugf("transition %s with %s", d, cfg)
	return e.ApplyAll(Plan(d, cfg))
}

// Err combines the errors of all failed results, or returns nil.
func Err(results []MutationResult) error {
	var err error
	for _, r := range results {
		err = multierr.Append(err, r.Err)
	}
	return err
}
