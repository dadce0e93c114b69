// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a publish failure. The kind decides retry
// behaviour and is what ends up in the post record's failure reason.
type ErrorKind string

const (
	KindAuth      ErrorKind = "AuthError"
	KindRateLimit ErrorKind = "RateLimitError"
	KindNetwork   ErrorKind = "NetworkError"
	KindValidate  ErrorKind = "ValidationError"
	KindUnknown   ErrorKind = "UnknownProviderError"
)

// Stage names the platform call that failed, so a media-upload failure is
// distinguishable from a post-submission failure in the recorded reason.
const (
	StageUpload = "upload"
	StagePost   = "post"
)

// Error is a classified platform failure.
type Error struct {
	Kind       ErrorKind
	Stage      string
	RetryAfter time.Duration // rate-limit hint from the provider, 0 if absent
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Stage)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the publisher may retry after this error.
// Auth and validation failures are terminal; retrying cannot fix them.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimit || e.Kind == KindNetwork
}

// Reason formats the failure for a post record, stage first:
// "upload: RateLimitError".
func (e *Error) Reason() string {
	return e.Stage + ": " + string(e.Kind)
}

// KindOf extracts the error kind from any error. Context expiry counts as
// a network failure (the call was abandoned), anything unclassified is an
// unknown provider error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	return KindUnknown
}

// classifyStatus maps a platform HTTP status to an error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusBadRequest ||
		status == http.StatusRequestEntityTooLarge ||
		status == http.StatusUnprocessableEntity:
		return KindValidate
	case status >= 500:
		return KindNetwork
	default:
		return KindUnknown
	}
}
