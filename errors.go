package twitterbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrMissingCredentials is returned when a credential field is empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidArguments is returned when a caller breaks a method's argument contract.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrEmptyTimeline is returned when a timeline has no tweets to pick from.
	ErrEmptyTimeline = errors.New("empty timeline")
	// ErrNotVerified is returned by operations that need the verified identity.
	ErrNotVerified = errors.New("credentials not verified")

	// ErrRateLimited matches 429 responses and error code 88.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized matches rejected or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches unknown users and resources.
	ErrNotFound = errors.New("not found")
	// ErrSuspended matches suspended or locked accounts.
	ErrSuspended = errors.New("account suspended")
)

func missingCredential(field string) error {
	return fmt.Errorf("%w: %s is empty", ErrMissingCredentials, field)
}

// errorClass categorizes Twitter API error responses for targeted handling.
type errorClass int

const (
	errNone         errorClass = iota
	errAuth                    // 32, 89 — could not authenticate / invalid token
	errRateLimit               // 88 — rate limit exceeded
	errNotFound                // 34, 50, 63 — resource or user not found
	errSuspended               // 64 — account suspended
	errInternal                // 131 — Twitter internal error
	errTimestamp               // 135 — request timestamp out of bounds
	errLocked                  // 326 — account locked
)

// apiErrorBody is the v1.1 error envelope.
type apiErrorBody struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// classifyError inspects a response body for known Twitter error codes.
// It returns the class plus the first code and message found.
func classifyError(body []byte) (errorClass, int, string) {
	var errResp apiErrorBody
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone, 0, ""
	}

	first := errResp.Errors[0]
	for _, e := range errResp.Errors {
		switch e.Code {
		case 32, 89:
			return errAuth, e.Code, e.Message
		case 88:
			return errRateLimit, e.Code, e.Message
		case 34, 50, 63:
			return errNotFound, e.Code, e.Message
		case 64:
			return errSuspended, e.Code, e.Message
		case 131:
			return errInternal, e.Code, e.Message
		case 135:
			return errTimestamp, e.Code, e.Message
		case 326:
			return errLocked, e.Code, e.Message
		}
	}
	return errNone, first.Code, first.Message
}

// APIError is a non-success response from the REST API.
type APIError struct {
	Endpoint string
	Status   int
	Code     int
	Message  string

	class errorClass
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s HTTP %d: code %d: %s", e.Endpoint, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.Status, e.Message)
}

// Unwrap maps the error onto the package sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == 429 || e.class == errRateLimit:
		return ErrRateLimited
	case e.class == errAuth || e.class == errTimestamp || e.Status == 401:
		return ErrUnauthorized
	case e.class == errNotFound || e.Status == 404:
		return ErrNotFound
	case e.class == errSuspended || e.class == errLocked:
		return ErrSuspended
	}
	return nil
}

// newAPIError builds an APIError from a response status and body.
func newAPIError(endpoint string, status int, body []byte) *APIError {
	class, code, msg := classifyError(body)
	if msg == "" {
		msg = truncateBytes(body, 200)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{
		Endpoint: endpoint,
		Status:   status,
		Code:     code,
		Message:  msg,
		class:    class,
	}
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
