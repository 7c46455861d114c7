package service

import (
	"fmt"

	"github.com/sadopc/worktrack/internal/apperr"
	"github.com/sadopc/worktrack/internal/logger"
)

// ErrorInfo is the failure half of a Result.
type ErrorInfo struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Result is what every service call returns. Calls never panic across the
// boundary.
type Result[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// Err converts a failed result back into an error; nil on success.
func (r Result[T]) Err() error {
	if r.Success || r.Error == nil {
		return nil
	}
	return &apperr.Error{Kind: r.Error.Kind, Msg: r.Error.Message}
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](op string, err error) Result[T] {
	kind := apperr.KindOf(err)
	if kind == apperr.Storage {
		logger.Error("operation failed", "op", op, "err", err)
	} else {
		logger.Warn("operation rejected", "op", op, "kind", kind, "err", err)
	}
	return Result[T]{Error: &ErrorInfo{Kind: kind, Message: err.Error()}}
}

// call runs fn and converts its outcome, including panics, into a Result.
func call[T any](op string, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = fail[T](op, apperr.StorageErr("internal error", fmt.Errorf("panic: %v", r)))
		}
	}()

	logger.Debug("call", "op", op)
	data, err := fn()
	if err != nil {
		return fail[T](op, err)
	}
	return ok(data)
}
