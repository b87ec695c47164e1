package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/specplan/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// SpecError indicates the requirement document could not be read or is malformed
	SpecError = 3

	// PlanError indicates the decomposition failed (cycle, dangling reference, size, conflict)
	PlanError = 4

	// StalePlan indicates a saved plan or lock no longer matches the requirements
	StalePlan = 5

	// IOError indicates a file could not be read or written
	IOError = 6

	// ConfigError indicates invalid configuration
	ConfigError = 7

	// LifecycleError indicates a rejected task state change
	LifecycleError = 8

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode maps an error to an exit code. Coded errors are
// classified by their code; anything else falls back to message matching
// for the usage errors cobra produces.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if code := errors.CodeOf(err); code != "" {
		return forCode(code)
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

func forCode(code errors.ErrorCode) int {
	if code == errors.ErrCodeSpecLockMismatch {
		return StalePlan
	}

	prefix, _, _ := strings.Cut(string(code), "-")
	switch prefix {
	case "SPEC":
		return SpecError
	case "PLAN":
		return PlanError
	case "IO":
		return IOError
	case "CONFIG":
		return ConfigError
	case "LIFECYCLE":
		return LifecycleError
	default:
		return GeneralError
	}
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case SpecError:
		return "Invalid requirement document"
	case PlanError:
		return "Decomposition failed"
	case StalePlan:
		return "Plan is stale"
	case IOError:
		return "File error"
	case ConfigError:
		return "Invalid configuration"
	case LifecycleError:
		return "Rejected task state change"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
