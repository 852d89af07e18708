// internal/executil/executil.go
package executil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const waitDelay = 2 * time.Second

// Runner executes a single command line and returns its combined output.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ShellRunner hands the command line to sh, so the caller is
// responsible for whatever ends up interpolated into it.
type ShellRunner struct{}

// Run executes command via `sh -c` and captures stdout+stderr together.
func (ShellRunner) Run(ctx context.Context, command string) (string, error) {
	return runCore(ctx, false, nil, "sh", "-c", command)
}

// DryRunner prints the command it would have run and reports success.
type DryRunner struct {
	Out io.Writer // default: os.Stdout
}

func (r DryRunner) Run(ctx context.Context, command string) (string, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := runCore(ctx, true, out, command)
	return "", err
}

// ----------------------------------------------------------------

func runCore(ctx context.Context, dry bool, dryOut io.Writer, name string, args ...string) (string, error) {
	fullCmd := strings.TrimSpace(name + " " + shellQuoteArgs(args))

	if dry {
		fmt.Fprintf(dryOut, "[DRY RUN] %s\n", fullCmd)
		return "", nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	// children of a killed shell may still hold the output pipe
	cmd.WaitDelay = waitDelay

	out, err := cmd.CombinedOutput()
	if err != nil {
		// A killed process also reports an ExitError, so ctx goes first.
		switch ctxErr := ctx.Err(); {
		case errors.Is(ctxErr, context.Canceled):
			return string(out), fmt.Errorf("command canceled: %s: %w", fullCmd, ctxErr)
		case errors.Is(ctxErr, context.DeadlineExceeded):
			return string(out), fmt.Errorf("command timed out: %s: %w", fullCmd, ctxErr)
		}
		// include exit status if available
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				return string(out), &CommandError{Command: fullCmd, ExitCode: status.ExitStatus(), Output: string(out), Err: err}
			}
		}
		return string(out), fmt.Errorf("failed to run command: %s: %w", fullCmd, err)
	}
	return string(out), nil
}

// CommandError reports a command that ran but exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed (exit=%d): %s: %v", e.ExitCode, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// shellQuoteArgs returns a printable, shell-safe representation of args.
func shellQuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'`$\\*?[]{}()<>|&;") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
