package qdrant

import "fmt"

type OperationErrorCode string

const (
	OperationErrorValidation  OperationErrorCode = "validation"
	OperationErrorTransport   OperationErrorCode = "transport"
	OperationErrorServerError OperationErrorCode = "server_error"
)

type OperationError struct {
	Op      string
	Code    OperationErrorCode
	Message string
	Status  int
	Cause   error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "qdrant operation error"
	}
	if e.Status != 0 {
		return fmt.Sprintf("qdrant %s: %s (http %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("qdrant %s: %s", e.Op, e.Message)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *OperationError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

func opErr(op string, code OperationErrorCode, msg string, cause error) *OperationError {
	return &OperationError{Op: op, Code: code, Message: msg, Cause: cause}
}
