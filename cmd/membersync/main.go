package main

import (
	"errors"
	"fmt"
	"os"

	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

// Exit codes, for process-level monitoring around scheduled runs.
const (
	exitOK         = 0
	exitSyncFailed = 1
	exitConfig     = 2
	exitSnapshot   = 3
	exitAborted    = 4
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		abortErr *syncerrors.AbortError
		snapErr  *syncerrors.SnapshotError
		parseErr *syncerrors.ParseError
		valErr   *syncerrors.ValidationError
	)

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &abortErr):
		return exitAborted
	case errors.As(err, &snapErr):
		return exitSnapshot
	case errors.As(err, &parseErr), errors.As(err, &valErr):
		return exitConfig
	default:
		return exitSyncFailed
	}
}
