// Package failure classifies run-aborting errors by the pipeline stage that
// produced them.
package failure

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Stage string

const (
	StageAuthenticate Stage = "authenticate"
	StageFetch        Stage = "fetch"
	StageResolve      Stage = "resolve"
	StageUpload       Stage = "upload"
	StageSubmit       Stage = "submit"
)

// Error is a stage failure. StatusCode, Message and Payload are set when the
// remote service answered; Err holds the transport or local cause otherwise.
type Error struct {
	Stage      Stage
	Path       string
	StatusCode int
	Message    string
	Payload    json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status=%d", e.StatusCode)
	}
	switch {
	case e.Message != "" && e.StatusCode != 0:
		fmt.Fprintf(&b, " message=%s", e.Message)
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the stage of the first *Error in err's chain.
func StageOf(err error) (Stage, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Stage, true
	}
	return "", false
}

// Wrap tags err with a stage unless it already carries one.
func Wrap(stage Stage, path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := StageOf(err); ok {
		return err
	}
	return &Error{Stage: stage, Path: path, Err: err}
}

// RemoteMessage pulls a human readable message out of an error payload. It
// understands the shapes the platform returns: {"error":...}, {"message":...},
// problem details ({"title","detail"}) and validation maps ({"errors":{...}}).
func RemoteMessage(payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		var s string
		if json.Unmarshal(payload, &s) == nil {
			return s
		}
		return trimmed
	}
	for _, key := range []string{"error", "message", "detail", "title"} {
		if raw, ok := obj[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	if raw, ok := obj["errors"]; ok {
		return strings.TrimSpace(string(raw))
	}
	return trimmed
}
