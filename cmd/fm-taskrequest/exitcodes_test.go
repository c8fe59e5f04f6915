package main

import (
	"fmt"
	"testing"

	"github.com/go-faster/errors"

	"github.com/iota-uz/fm-taskrequest/modules/facility/domain/failure"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", fmt.Errorf("boom"), 1},
		{"usage", withCode(exitUsage, fmt.Errorf("bad flag")), exitUsage},
		{"validation", withCode(exitValidation, fmt.Errorf("bad file")), exitValidation},
		{"authenticate", &failure.Error{Stage: failure.StageAuthenticate}, exitAuth},
		{"fetch", &failure.Error{Stage: failure.StageFetch, Path: "/api/masterdata/employee"}, exitFetch},
		{"resolve", &failure.Error{Stage: failure.StageResolve}, exitResolve},
		{"upload", &failure.Error{Stage: failure.StageUpload}, exitUpload},
		{"submit", &failure.Error{Stage: failure.StageSubmit, StatusCode: 400}, exitSubmit},
		{"wrapped stage", errors.Wrap(&failure.Error{Stage: failure.StageSubmit}, "run"), exitSubmit},
		{"unknown stage", &failure.Error{Stage: "other"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestWithCode_Nil(t *testing.T) {
	if err := withCode(exitUsage, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
