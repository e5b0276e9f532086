package zillow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the target address is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrTooManyRedirects is returned when the redirect budget runs out.
	ErrTooManyRedirects = errors.New("too many redirects while fetching url")
	// ErrUnexpectedStatus matches any *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrPayloadNotFound matches any *PayloadNotFoundError.
	ErrPayloadNotFound = errors.New("unable to locate search data payload in the html")
	// ErrMalformedPayload is returned when the payload is not valid JSON.
	ErrMalformedPayload = errors.New("failed to parse search data payload")
)

// NetworkError wraps a transport failure: DNS, refused or reset connections, timeouts.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError reports a response that was neither 200 nor a followable redirect.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// PayloadNotFoundError is returned when the page has no search data script.
// PageTitle is the document title, which usually tells a captcha page apart from a layout change.
type PayloadNotFoundError struct {
	PageTitle string
}

func (e *PayloadNotFoundError) Error() string {
	if e.PageTitle == "" {
		return ErrPayloadNotFound.Error()
	}
	return fmt.Sprintf("%s (page title: %q)", ErrPayloadNotFound, e.PageTitle)
}

func (e *PayloadNotFoundError) Is(target error) bool {
	return target == ErrPayloadNotFound
}
