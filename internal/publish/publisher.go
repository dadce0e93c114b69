// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"log/slog"
	"time"

	"pulsepost/internal/models"
)

// PlatformAPI is the external publish surface. *Client implements it;
// tests substitute fakes.
type PlatformAPI interface {
	UploadMedia(ctx context.Context, data []byte, contentType string) (string, error)
	CreatePost(ctx context.Context, text, mediaRef string) (string, error)
}

// Result is the outcome of a publish attempt sequence.
type Result struct {
	PlatformPostID string
	Attempts       int
}

// attemptState is one state of the retry machine. Transitions are decided
// by nextState, a pure function of the error kind and attempt number, so
// the policy is testable without timers.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateBackoff
	stateSucceeded
	stateExhausted
)

// sleepFunc blocks for d or until the context is done. Injected so tests
// run without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy configures the publisher's backoff behaviour.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, default 3
	BaseDelay   time.Duration // first backoff delay, default 5s
	MaxDelay    time.Duration // backoff cap, default 60s
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = 5 * time.Second
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = 60 * time.Second
	}
	return p
}

// Publisher posts a draft+image through the platform API, retrying
// recoverable failures. It does not deduplicate: at most one attempt
// sequence per cycle is the scheduler's invariant, not the publisher's.
type Publisher struct {
	api    PlatformAPI
	policy RetryPolicy
	sleep  sleepFunc
}

// NewPublisher creates a publisher with the given retry policy.
func NewPublisher(api PlatformAPI, policy RetryPolicy) *Publisher {
	return &Publisher{
		api:    api,
		policy: policy.withDefaults(),
		sleep:  sleepContext,
	}
}

// Publish uploads the media (when present) and submits the post. Network
// and rate-limit failures are retried up to MaxAttempts with exponential
// backoff; auth and validation failures end the sequence immediately.
// Result.Attempts is valid even when an error is returned.
func (p *Publisher) Publish(ctx context.Context, draft models.ContentDraft, image models.ImageArtifact) (Result, error) {
	var lastErr *Error

	for attempt := 1; ; attempt++ {
		postID, err := p.attempt(ctx, draft, image)
		if err == nil {
			return Result{PlatformPostID: postID, Attempts: attempt}, nil
		}

		lastErr = asError(err)
		slog.Warn("publish attempt failed",
			"attempt", attempt,
			"kind", lastErr.Kind,
			"stage", lastErr.Stage,
			"error", lastErr.Err,
		)

		switch nextState(lastErr, attempt, p.policy.MaxAttempts) {
		case stateExhausted:
			return Result{Attempts: attempt}, lastErr
		case stateBackoff:
			delay := backoffDelay(p.policy, attempt)
			// A provider retry-after hint wins over our own schedule.
			if lastErr.RetryAfter > delay {
				delay = lastErr.RetryAfter
			}
			if err := p.sleep(ctx, delay); err != nil {
				// Cycle ceiling hit while waiting; abandon as a network failure.
				return Result{Attempts: attempt}, &Error{Kind: KindNetwork, Stage: lastErr.Stage, Err: err}
			}
		}
	}
}

// attempt performs one upload+post sequence. Media is uploaded first so
// its reference exists before the post call; an artifact with no data
// (degraded rendering) publishes text-only.
func (p *Publisher) attempt(ctx context.Context, draft models.ContentDraft, image models.ImageArtifact) (string, error) {
	var mediaRef string
	if len(image.Data) > 0 {
		ref, err := p.api.UploadMedia(ctx, image.Data, image.ContentType)
		if err != nil {
			return "", err
		}
		mediaRef = ref
	}

	return p.api.CreatePost(ctx, draft.FullText(), mediaRef)
}

// nextState decides what follows a failed attempt: retry after backoff,
// or give up. Terminal kinds and exhausted attempts both end the machine.
func nextState(err *Error, attempt, maxAttempts int) attemptState {
	if !err.Retryable() {
		return stateExhausted
	}
	if attempt >= maxAttempts {
		return stateExhausted
	}
	return stateBackoff
}

// backoffDelay doubles the base delay per completed attempt, capped.
func backoffDelay(p RetryPolicy, attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d > p.MaxDelay || d < 0 {
		return p.MaxDelay
	}
	return d
}

// asError wraps unclassified errors so the state machine always sees a
// taxonomy kind.
func asError(err error) *Error {
	if pe, ok := err.(*Error); ok {
		return pe
	}
	return &Error{Kind: KindOf(err), Stage: StagePost, Err: err}
}

// sleepContext is the production sleep: a timer that respects ctx.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
