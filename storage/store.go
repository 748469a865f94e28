package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/dsa-lake/data-lander/lander_error"
)

// Store writes single objects to a bucket
type Store interface {
	Identifier() string
	// Put writes data to key in bucket, replacing any existing object.
	// Failures are returned as *Error.
	Put(ctx context.Context, bucket, key string, data []byte) error
}

// Error is a classified storage failure
type Error struct {
	Kind lander_error.TransmissionKind
	// StatusCode is the HTTP status returned by the service, or 0 if no response was received
	StatusCode int
	// Code is the service specific error code, if any
	Code string
	Err  error
}

func (e *Error) Error() string {
	var details []string
	if e.StatusCode != 0 {
		details = append(details, fmt.Sprintf("status %d", e.StatusCode))
	}
	if e.Code != "" {
		details = append(details, e.Code)
	}
	msg := fmt.Sprintf("%s storage failure", e.Kind)
	if len(details) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(details, ", "))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the transmission kind of err, classifying unwrapped transport failures
func KindOf(err error) lander_error.TransmissionKind {
	var storageErr *Error
	if errors.As(err, &storageErr) {
		return storageErr.Kind
	}
	if kind, ok := classifyTransport(err); ok {
		return kind
	}
	return lander_error.TransmissionUnknown
}

// ClassifyStatus maps an HTTP status returned by an object store to a transmission kind
func ClassifyStatus(statusCode int) lander_error.TransmissionKind {
	switch {
	case statusCode == http.StatusMovedPermanently, statusCode == http.StatusTemporaryRedirect:
		return lander_error.TransmissionLocation
	case statusCode == http.StatusBadRequest:
		return lander_error.TransmissionMalformed
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return lander_error.TransmissionAuth
	case statusCode == http.StatusNotFound:
		return lander_error.TransmissionNotFound
	case statusCode == http.StatusRequestTimeout:
		return lander_error.TransmissionTimeout
	case statusCode == http.StatusTooManyRequests, statusCode >= 500 && statusCode <= 599:
		return lander_error.TransmissionTransientServer
	default:
		return lander_error.TransmissionUnknown
	}
}

// classifyCode maps S3 style error codes which are more specific than their status
func classifyCode(code string) (lander_error.TransmissionKind, bool) {
	switch code {
	case "PermanentRedirect", "AuthorizationHeaderMalformed", "IllegalLocationConstraintException":
		return lander_error.TransmissionLocation, true
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "AllAccessDisabled":
		return lander_error.TransmissionAuth, true
	case "NoSuchBucket":
		return lander_error.TransmissionNotFound, true
	case "SlowDown", "InternalError", "ServiceUnavailable":
		return lander_error.TransmissionTransientServer, true
	}
	return "", false
}

// classifyTransport recognises failures where no response was received
func classifyTransport(err error) (lander_error.TransmissionKind, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return lander_error.TransmissionTimeout, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return lander_error.TransmissionTimeout, true
		}
		return lander_error.TransmissionDispatch, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return lander_error.TransmissionDispatch, true
	}
	return "", false
}

// newError classifies a failure from its status code, service code and transport error
func newError(statusCode int, code string, err error) *Error {
	kind, ok := classifyCode(code)
	if !ok && statusCode != 0 {
		kind, ok = ClassifyStatus(statusCode), true
	}
	if !ok {
		kind, ok = classifyTransport(err)
	}
	if !ok {
		kind = lander_error.TransmissionUnknown
	}
	return &Error{Kind: kind, StatusCode: statusCode, Code: code, Err: err}
}
