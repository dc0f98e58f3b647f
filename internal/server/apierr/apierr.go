// Package apierr maps service errors to what transports show to clients.
package apierr

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"google.golang.org/grpc/codes"
)

// Machine-readable error codes sent in response bodies.
const (
	CodeInvalidRequest = "invalid_request"
	CodeDoesNotExist   = "does_not_exist"
	CodeAlreadyExists  = "already_exists"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeRateLimited    = "rate_limited"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal"
)

// SignInFailed is the only message a failed sign-in ever shows.
const SignInFailed = "Invalid email or password."

// Info is the client-facing form of an error.
type Info struct {
	HTTPStatus int        `json:"-"`
	GRPCCode   codes.Code `json:"-"`
	Code       string     `json:"error_code"`
	Message    string     `json:"error_message,omitempty"`
}

// From classifies err. Messages of unexpected errors are never exposed.
func From(err error) Info {
	switch {
	case errors.Is(err, common.ErrAuthenticationFailed):
		return Info{http.StatusBadRequest, codes.Unauthenticated, CodeDoesNotExist, SignInFailed}
	case errors.Is(err, common.ErrValidation):
		return Info{http.StatusBadRequest, codes.InvalidArgument, CodeInvalidRequest, err.Error()}
	case errors.Is(err, common.ErrAlreadyVerified):
		return Info{http.StatusBadRequest, codes.FailedPrecondition, CodeAlreadyExists, err.Error()}
	case errors.Is(err, common.ErrorAlreadyExists):
		return Info{http.StatusBadRequest, codes.AlreadyExists, CodeAlreadyExists, "Username or email already in use."}
	case errors.Is(err, common.ErrResourceExhausted):
		return Info{http.StatusServiceUnavailable, codes.Unavailable, CodeUnavailable, "Server is busy, try again later."}
	case errors.Is(err, common.ErrRateLimited):
		return Info{http.StatusTooManyRequests, codes.ResourceExhausted, CodeRateLimited, "Too many requests."}
	case errors.Is(err, common.ErrorUnauthorized):
		return Info{http.StatusUnauthorized, codes.Unauthenticated, CodeUnauthorized, ""}
	case errors.Is(err, common.ErrorForbidden):
		return Info{http.StatusForbidden, codes.PermissionDenied, CodeForbidden, ""}
	case errors.Is(err, common.ErrorNotFound):
		return Info{http.StatusNotFound, codes.NotFound, CodeDoesNotExist, ""}
	default:
		return Info{http.StatusInternalServerError, codes.Internal, CodeInternal, ""}
	}
}
