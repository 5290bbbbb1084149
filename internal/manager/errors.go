package manager

import (
	"errors"
	"fmt"

	"fontd/internal/common/httpclient"
	"fontd/internal/fetch"
)

// slowLinkError signals a request skipped by the slow-link policy.
type slowLinkError struct {
	family   string
	priority Priority
}

func (e slowLinkError) Error() string {
	return fmt.Sprintf("slow link: skipped %s priority load of %s", e.priority, e.family)
}

// IsSlowLink reports whether err is a slow-link skip.
func IsSlowLink(err error) bool {
	var e slowLinkError
	return errors.As(err, &e)
}

// invalidRequestError rejects malformed requests (e.g. blank family).
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return "invalid load request: " + e.msg }

// IsInvalidRequest reports whether err indicates a malformed request.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

// ErrClosed is returned for requests made after Close.
var ErrClosed = errors.New("manager closed")

// LoadError is a recorded failure returned when a family that failed
// permanently is requested again without ForceReload.
type LoadError struct {
	Family   string
	Attempts int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s failed after %d attempt(s): %v", e.Family, e.Attempts, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsFamilyNotFound reports whether err means the catalog has no such family.
func IsFamilyNotFound(err error) bool { return errors.Is(err, fetch.ErrFamilyNotFound) }

// IsPermanent reports whether retrying err cannot help.
func IsPermanent(err error) bool { return fetch.IsPermanent(err) }

// IsAuth reports whether err came from a 401/403 response.
func IsAuth(err error) bool { return httpclient.IsAuth(err) }
