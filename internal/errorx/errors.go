package errorx

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
	"github.com/joeblew999/plat-mailfix/pkg/tags"
)

// CodeError is a typed error that carries an HTTP status code.
// Logic functions return these so the global error handler can map
// them to the correct HTTP response.
type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *CodeError) Error() string {
	return e.Msg
}

// ErrBadRequest returns a 400 error.
func ErrBadRequest(msg string) error {
	return &CodeError{Code: http.StatusBadRequest, Msg: msg}
}

// ErrConflict returns a 409 error.
func ErrConflict(msg string) error {
	return &CodeError{Code: http.StatusConflict, Msg: msg}
}

// ErrTooLarge returns a 413 error.
func ErrTooLarge(msg string) error {
	return &CodeError{Code: http.StatusRequestEntityTooLarge, Msg: msg}
}

// ErrTooManyRequests returns a 429 error.
func ErrTooManyRequests(msg string) error {
	return &CodeError{Code: http.StatusTooManyRequests, Msg: msg}
}

// ErrInternal returns a 500 error.
func ErrInternal(msg string) error {
	return &CodeError{Code: http.StatusInternalServerError, Msg: msg}
}

// FromService maps a pipeline or review error to a CodeError.
func FromService(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrEmpty):
		return ErrBadRequest(err.Error())
	case errors.Is(err, pipeline.ErrTooLarge):
		return ErrTooLarge(err.Error())
	case errors.Is(err, pipeline.ErrRateLimited):
		return ErrTooManyRequests(err.Error())
	case errors.Is(err, tags.ErrOutOfRange):
		return ErrBadRequest(err.Error())
	case errors.Is(err, tags.ErrAlreadyApplied),
		errors.Is(err, tags.ErrNotApplied),
		errors.Is(err, tags.ErrStale):
		return ErrConflict(err.Error())
	case errors.Is(err, pipeline.ErrProcessFailed):
		return ErrInternal("template could not be processed")
	}
	return err
}

// RegisterErrorHandler installs a global error handler that maps CodeError
// to the correct HTTP status code. Untyped errors become 500.
func RegisterErrorHandler() {
	httpx.SetErrorHandlerCtx(func(ctx context.Context, err error) (int, any) {
		var e *CodeError
		if errors.As(err, &e) {
			return e.Code, &CodeError{Code: e.Code, Msg: e.Msg}
		}
		logx.WithContext(ctx).Errorf("unexpected error: %v", err)
		return http.StatusInternalServerError, &CodeError{
			Code: http.StatusInternalServerError,
			Msg:  "internal server error",
		}
	})
}
