package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := runContext(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runContext(context.Background(), args, stdin, stdout, stderr)
}

func runContext(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCommand(&cliIO{stdin: stdin, stdout: stdout, stderr: stderr})
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}

	var ce *cliError
	if errors.As(err, &ce) {
		if ce.msg != "" {
			if ce.err != nil {
				fmt.Fprintf(stderr, FmtErrorWithCause, ce.msg, ce.err)
			} else {
				fmt.Fprintln(stderr, ce.msg)
			}
		}
		return ce.code
	}

	// cobra argument and flag errors
	fmt.Fprintln(stderr, err)
	return ExitCodeUsageError
}

// cliError carries the exit code for a failed command
type cliError struct {
	code int
	msg  string
	err  error
}

func (e *cliError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

func usageError(msg string, err error) error {
	return &cliError{code: ExitCodeUsageError, msg: msg, err: err}
}

func inputError(msg string, err error) error {
	return &cliError{code: ExitCodeInputError, msg: msg, err: err}
}

func validationError(msg string, err error) error {
	return &cliError{code: ExitCodeValidationError, msg: msg, err: err}
}

func commandError(msg string, err error) error {
	return &cliError{code: ExitCodeError, msg: msg, err: err}
}

// silentExit sets the exit code without printing anything more
func silentExit(code int) error {
	return &cliError{code: code}
}
