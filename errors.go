package main

import (
	"errors"
	"fmt"
	"net/http"

	spotify "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

type errorType string

const (
	typeValidation   errorType = "validation"
	typeUnauthorized errorType = "unauthorized"
	typeForbidden    errorType = "forbidden"
	typeNotFound     errorType = "not_found"
	typeExternal     errorType = "external"
	typeInternal     errorType = "internal"
)

var errNoSession = errors.New("no session")

type appError struct {
	Type    errorType
	Message string
	Cause   error
}

func (e *appError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *appError) Unwrap() error {
	return e.Cause
}

func (e *appError) HTTPStatus() int {
	switch e.Type {
	case typeValidation:
		return http.StatusBadRequest
	case typeUnauthorized:
		return http.StatusUnauthorized
	case typeForbidden:
		return http.StatusForbidden
	case typeNotFound:
		return http.StatusNotFound
	case typeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validationError(message string) *appError {
	return &appError{Type: typeValidation, Message: message}
}

func unauthorizedError(cause error) *appError {
	return &appError{Type: typeUnauthorized, Message: "session missing or expired", Cause: cause}
}

func forbiddenError(message string, cause error) *appError {
	return &appError{Type: typeForbidden, Message: message, Cause: cause}
}

func notFoundError(message string) *appError {
	return &appError{Type: typeNotFound, Message: message}
}

func externalError(message string, cause error) *appError {
	return &appError{Type: typeExternal, Message: message, Cause: cause}
}

func internalError(message string, cause error) *appError {
	return &appError{Type: typeInternal, Message: message, Cause: cause}
}

// asAppError returns err unchanged when it already is an *appError and wraps it as internal otherwise.
func asAppError(err error) *appError {
	if err == nil {
		return nil
	}

	var appErr *appError
	if errors.As(err, &appErr) {
		return appErr
	}

	return internalError("internal server error", err)
}

// isUnauthorized reports whether err means the client's session can no longer be used.
func isUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errNoSession) {
		return true
	}

	var appErr *appError
	if errors.As(err, &appErr) && appErr.Type == typeUnauthorized {
		return true
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return true
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr.Status == http.StatusUnauthorized {
		return true
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		code := retrieveErr.Response.StatusCode
		return code == http.StatusBadRequest || code == http.StatusUnauthorized
	}

	return false
}

// classify turns a provider call error into an appError.
func classify(message string, err error) *appError {
	if isUnauthorized(err) {
		return unauthorizedError(err)
	}
	return externalError(message, err)
}
