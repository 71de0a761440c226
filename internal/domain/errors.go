package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedURL rejects a storefront URL matching neither platform.
// The message is user-facing and surfaced verbatim.
var ErrUnsupportedURL = errors.New("Invalid url. Make sure to use a Playstore or Appstore url.")

// FetchError wraps any failure from a platform review client. The pipeline
// does not retry; the cause is kept for diagnostics.
type FetchError struct {
	Platform Platform
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetching reviews failed: %v", e.Platform, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MalformedRecordError reports a raw review violating the service contract
// (a required field missing or unparseable). It fails the whole request;
// records are never silently dropped.
type MalformedRecordError struct {
	Platform Platform
	Field    string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed review record: field %q: %v", e.Platform, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: malformed review record: field %q missing", e.Platform, e.Field)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
