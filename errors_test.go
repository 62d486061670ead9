package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	spotify "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

func TestIsUnauthorized(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "no session", err: errNoSession, want: true},
		{name: "wrapped no session", err: fmt.Errorf("load: %w", errNoSession), want: true},
		{name: "unauthorized app error", err: unauthorizedError(nil), want: true},
		{name: "spotify 401", err: spotify.Error{Status: http.StatusUnauthorized}, want: true},
		{name: "spotify 401 pointer", err: &spotify.Error{Status: http.StatusUnauthorized}, want: true},
		{name: "spotify 500", err: spotify.Error{Status: http.StatusInternalServerError}, want: false},
		{
			name: "refresh rejected",
			err: &url.Error{Op: "Get", URL: "https://api.spotify.com/v1/me", Err: &oauth2.RetrieveError{
				Response: &http.Response{StatusCode: http.StatusBadRequest},
			}},
			want: true,
		},
		{
			name: "token endpoint down",
			err:  &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusServiceUnavailable}},
			want: false,
		},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isUnauthorized(tc.err))
		})
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, validationError("x").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, unauthorizedError(nil).HTTPStatus())
	assert.Equal(t, http.StatusForbidden, forbiddenError("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusNotFound, notFoundError("x").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, externalError("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, internalError("x", nil).HTTPStatus())
}

func TestAsAppError(t *testing.T) {
	assert.Nil(t, asAppError(nil))

	orig := notFoundError("missing")
	assert.Same(t, orig, asAppError(fmt.Errorf("wrapped: %w", orig)))

	cause := errors.New("boom")
	wrapped := asAppError(cause)
	assert.Equal(t, typeInternal, wrapped.Type)
	assert.ErrorIs(t, wrapped, cause)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, typeUnauthorized, classify("x", spotify.Error{Status: http.StatusUnauthorized}).Type)
	assert.Equal(t, typeExternal, classify("x", errors.New("timeout")).Type)
}
