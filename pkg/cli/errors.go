package cli

import (
	"errors"
	"fmt"

	"github.com/lockllm/lockllm-go/pkg/lockllm"
)

// Process exit codes. ExitBlocked is distinct from ExitFailure so shell
// scripts can tell a security verdict from an operational failure.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitBlocked = 2
)

// CommandError wraps a subcommand failure with the command name, so the
// top-level error line reads "lockllm scan: gateway unreachable" rather
// than a bare cause.
type CommandError struct {
	Command string
	Err     error
}

// NewCommandError wraps err as a failure of the named subcommand.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("lockllm %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to the process exit code. Gateway security
// verdicts (prompt injection, policy violation, abuse, PII) exit with
// ExitBlocked; any other error is an ordinary failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		injection *lockllm.PromptInjectionError
		policy    *lockllm.PolicyViolationError
		abuse     *lockllm.AbuseDetectedError
		pii       *lockllm.PIIDetectedError
	)
	if errors.As(err, &injection) || errors.As(err, &policy) ||
		errors.As(err, &abuse) || errors.As(err, &pii) {
		return ExitBlocked
	}
	return ExitFailure
}
