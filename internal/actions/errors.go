// Package actions is the dispatcher: the single entry point for agent
// mutations. A verb handler runs inside one serializable transaction and
// either applies all of its effects or none of them.
package actions

import "fmt"

// Code is the machine-readable error taxonomy. The HTTP layer maps codes
// to status; clients branch on them.
type Code string

const (
	CodeAuthRequired Code = "AUTH_REQUIRED"
	CodeAuthInvalid  Code = "AUTH_INVALID"

	CodeMissingRequestID Code = "MISSING_REQUEST_ID"
	CodeUnknownAction    Code = "UNKNOWN_ACTION"
	CodeBadArgs          Code = "BAD_ARGS"

	CodeAgentNotFound Code = "AGENT_NOT_FOUND"
	CodeAgentBanned   Code = "AGENT_BANNED"
	CodeInvalidStatus Code = "INVALID_STATUS"
	CodeAgentBusy     Code = "AGENT_BUSY"

	CodePreconditionFailed Code = "PRECONDITION_FAILED"

	CodeInsufficientFunds     Code = "INSUFFICIENT_FUNDS"
	CodeInsufficientInventory Code = "INSUFFICIENT_INVENTORY"

	CodeDuplicateInProgress Code = "DUPLICATE_REQUEST_IN_PROGRESS"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// Error is a deterministic action failure: replaying the request yields the
// same error, so the dispatcher finalizes it into the idempotency lock.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errf builds a deterministic action failure.
func Errf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func badArgs(format string, args ...any) *Error {
	return Errf(CodeBadArgs, format, args...)
}

func precondition(format string, args ...any) *Error {
	return Errf(CodePreconditionFailed, format, args...)
}

func insufficientFunds(need, have int64) *Error {
	return Errf(CodeInsufficientFunds, "need $%d, have $%d", need, have)
}
