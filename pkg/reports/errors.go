package reports

import "fmt"

// Sentinel codes for failures that happen before the report service answers.
const (
	CodeNoInternet     = -1
	CodeInvalidToken   = -2
	CodeNotInitialized = -3
	// CodeBadRequest is returned by the report service for batches it cannot decode.
	CodeBadRequest = 400
)

// Error is a delivery failure reported by the channel or the report service.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("report error %d: %s", e.Code, e.Message)
}

// IsRetryable reports whether a batch that failed with this error should be resent.
// Server faults and failures to reach or authenticate with the server keep the batch.
func (e Error) IsRetryable() bool {
	switch e.Code {
	case CodeNoInternet, CodeInvalidToken, CodeNotInitialized:
		return true
	}
	return e.Code >= 500
}

// AnyRetryable reports whether at least one error keeps the batch alive.
func AnyRetryable(errs []Error) bool {
	for _, err := range errs {
		if err.IsRetryable() {
			return true
		}
	}
	return false
}

func NoInternet(err error) Error {
	return Error{Code: CodeNoInternet, Message: err.Error()}
}

func InvalidToken(message string) Error {
	return Error{Code: CodeInvalidToken, Message: message}
}

func NotInitialized(message string) Error {
	return Error{Code: CodeNotInitialized, Message: message}
}
