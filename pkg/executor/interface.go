package executor

import "context"

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor defines the interface for executing external commands
type Executor interface {
	// Run executes name with args. A non-zero exit is reported through
	// Result.ExitCode with a nil error; err is reserved for commands that
	// could not be started or were killed by ctx.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}
