// Package bridge holds the APIs bound into the Wails frontend. Every method
// answers with a Response envelope; Go errors never cross the boundary.
package bridge

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"

	"gitdesk/internal/git/client"
	"gitdesk/internal/git/runner"
	"gitdesk/internal/registry"
	"gitdesk/internal/session"
)

// Code classifies a failed call for the frontend.
type Code string

const (
	CodeNoSession       Code = "NO_SESSION"
	CodeNotFound        Code = "NOT_FOUND"
	CodeNotARepository  Code = "NOT_A_REPOSITORY"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeDetachedHead    Code = "DETACHED_HEAD"
	CodeTimeout         Code = "TIMEOUT"
	CodeCanceled        Code = "CANCELED"
	CodeIO              Code = "IO"
	CodeGitFailed       Code = "GIT_FAILED"
)

// Response is the envelope returned by every bound method. Error and Code
// are empty on success.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
	Code  Code   `json:"code,omitempty"`
}

// OK reports whether the call succeeded.
func (r Response) OK() bool { return r.Code == "" }

func success(data any) Response { return Response{Data: data} }

func failure(err error) Response {
	return Response{Error: runner.RedactTokens(err.Error()), Code: Classify(err)}
}

// Classify maps an error to its response code. Order matters: a timed-out
// git command is TIMEOUT, not GIT_FAILED.
func Classify(err error) Code {
	var (
		ioErr    *registry.IOError
		cmdErr   *runner.CommandError
		pathErr  *fs.PathError
		linkErr  *os.LinkError
		fieldErr validator.ValidationErrors
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNoSession):
		return CodeNoSession
	case errors.Is(err, registry.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, client.ErrNotRepository):
		return CodeNotARepository
	case errors.Is(err, client.ErrDetachedHead):
		return CodeDetachedHead
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, client.ErrInvalidArgument),
		errors.Is(err, registry.ErrInvalidPath),
		errors.Is(err, ErrInvalidRequest),
		errors.As(err, &fieldErr):
		return CodeInvalidArgument
	case errors.As(err, &ioErr), errors.As(err, &pathErr), errors.As(err, &linkErr):
		return CodeIO
	case errors.As(err, &cmdErr):
		return CodeGitFailed
	default:
		return CodeGitFailed
	}
}
