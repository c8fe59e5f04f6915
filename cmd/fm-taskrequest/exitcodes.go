package main

import (
	"github.com/go-faster/errors"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitAuth       = 4
	exitFetch      = 5
	exitResolve    = 6
	exitUpload     = 7
	exitSubmit     = 8
)

var stageExitCodes = map[failure.Stage]int{
	failure.StageAuthenticate: exitAuth,
	failure.StageFetch:        exitFetch,
	failure.StageResolve:      exitResolve,
	failure.StageUpload:       exitUpload,
	failure.StageSubmit:       exitSubmit,
}

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	if stage, ok := failure.StageOf(err); ok {
		if code, ok := stageExitCodes[stage]; ok {
			return code
		}
	}
	return 1
}
