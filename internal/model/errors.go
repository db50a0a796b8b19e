package model

import (
	"context"
	"errors"
	"net"
)

var (
	ErrEmptyExportSet   = errors.New("nothing to export")
	ErrMutationRejected = errors.New("mutation rejected")
	ErrTransport        = errors.New("remote unreachable")
	ErrShapeMismatch    = errors.New("unexpected response shape")
	ErrNotFound         = errors.New("record not found")
)

// Code is a short error class used in status lines and logs.
type Code string

const (
	CodeUnknown  Code = "unknown"
	CodeEmpty    Code = "empty"
	CodeRejected Code = "rejected"
	CodeNetwork  Code = "network"
	CodeShape    Code = "shape"
	CodeNotFound Code = "not-found"
	CodeCancel   Code = "cancel"
)

// Classify maps err onto a Code using sentinel errors only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	switch {
	case errors.Is(err, ErrEmptyExportSet):
		return CodeEmpty
	case errors.Is(err, ErrMutationRejected):
		return CodeRejected
	case errors.Is(err, ErrShapeMismatch):
		return CodeShape
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrTransport):
		return CodeNetwork
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeNetwork
	}
	return CodeUnknown
}
