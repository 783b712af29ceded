package cli

import "fmt"

// ExitCoder is an error carrying a process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// UsageError is a user mistake on the command line. Run prints it with the command's help and exits 2.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }
func (e UsageError) ExitCode() int { return 2 }

// Usagef returns a UsageError with a formatted message.
func Usagef(format string, args ...any) UsageError {
	return UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitError wraps Err with an explicit exit code. A nil Err exits silently.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e ExitError) Unwrap() error { return e.Err }
func (e ExitError) ExitCode() int { return e.Code }
