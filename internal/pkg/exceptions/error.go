package exceptions

import (
	"errors"
	"fmt"
	"runtime"

	"careflow-service/internal/pkg/constvars"
)

// Kind classifies an error so callers can branch on the class of failure
// instead of matching message strings.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindMissingAnswer       Kind = "MISSING_ANSWER"
	KindNotEligible         Kind = "NOT_ELIGIBLE"
	KindIncompatibleProgram Kind = "INCOMPATIBLE_PROGRAM"
	KindRemoteFailure       Kind = "REMOTE_FAILURE"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindNotFound            Kind = "NOT_FOUND"
	KindInternal            Kind = "INTERNAL_ERROR"
)

type CustomError struct {
	StatusCode    int      `json:"status_code"`
	Success       bool     `json:"success"`
	Kind          Kind     `json:"kind"`
	ClientMessage string   `json:"message"`
	DevMessage    string   `json:"-"`
	Location      Location `json:"-"`
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

// IsKind reports whether err is a CustomError of the given kind.
func IsKind(err error, kind Kind) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind == kind
	}
	return false
}

func BuildNewCustomError(err error, statusCode int, kind Kind, clientMessage, devMessage string) *CustomError {
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		Kind:          kind,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Location:      getLocation(3),
	}
}

// FromError coerces any error into a CustomError. Errors that are not
// already a CustomError are treated as internal failures.
func FromError(err error) *CustomError {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return &CustomError{
		StatusCode:    constvars.StatusInternalServerError,
		Kind:          KindInternal,
		ClientMessage: constvars.ErrClientSomethingWrongWithApplication,
		DevMessage:    err.Error(),
		Location:      getLocation(2),
	}
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ErrFileLocationUnknown,
			Line:         0,
			FunctionName: constvars.ErrFunctionNameUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
