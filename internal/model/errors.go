package model

import (
	"fmt"
	"time"
)

// HTTPError wraps an unexpected HTTP status code.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FetchError reports a failed page fetch: bad status, connection or DNS failure.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports page content that could not be parsed at all.
// Malformed vacancy entries never produce one; they are skipped.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse page: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError reports a read or write failure on the persisted known set.
type StoreError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NotifyError reports a transport failure or a non-success response from the
// messaging endpoint.
type NotifyError struct {
	StatusCode  int    // zero when the request never got a response
	Description string // response detail from the endpoint
	Err         error
}

func (e *NotifyError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("notify: %v", e.Err)
	case e.Description != "":
		return fmt.Sprintf("notify: HTTP %d: %s", e.StatusCode, e.Description)
	default:
		return fmt.Sprintf("notify: HTTP %d", e.StatusCode)
	}
}

func (e *NotifyError) Unwrap() error { return e.Err }
