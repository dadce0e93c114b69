// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler owns the produce-and-publish cycle: it decides when
// to act, selects the topic, drives generation and publishing, and
// records the outcome. It is the only component with mutable
// process-wide state, guarded by a single cycle lock.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorhill/cronexpr"

	"pulsepost/internal/metrics"
	"pulsepost/internal/models"
	"pulsepost/internal/publish"
	"pulsepost/internal/slug"
)

// Trigger names the origin of a cycle.
const (
	TriggerTimed  = "timed"
	TriggerManual = "manual"
)

// ReasonNoTopics is the failure reason recorded when no topic is enabled.
const ReasonNoTopics = "NoTopicsAvailable"

// ErrBusy is returned to a manual trigger while a cycle is in flight.
// The in-flight cycle is not cancelled; the caller simply tries later.
var ErrBusy = errors.New("scheduler: a cycle is already running")

// ContentGenerator produces a draft for a topic. Never fails; provider
// errors are absorbed by its fallback strategy.
type ContentGenerator interface {
	Generate(ctx context.Context, topic models.Topic) models.ContentDraft
}

// ImageRenderer produces an artifact for a draft. Never fails the cycle.
type ImageRenderer interface {
	Render(draft models.ContentDraft, profile models.AspectProfile, seed int64) models.ImageArtifact
}

// Publisher posts a draft+image, retrying recoverable failures.
type Publisher interface {
	Publish(ctx context.Context, draft models.ContentDraft, image models.ImageArtifact) (publish.Result, error)
}

// History is the append-only record sink.
type History interface {
	Append(ctx context.Context, rec *models.PostRecord) error
}

// StateStore persists the schedule state across restarts.
type StateStore interface {
	Save(ctx context.Context, state models.ScheduleState) error
}

// TopicSource supplies the topics eligible for selection.
type TopicSource interface {
	ListEnabled(ctx context.Context) ([]models.Topic, error)
}

// ArtifactArchive stores published images as side artifacts. Optional.
type ArtifactArchive interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Options configure a Scheduler.
type Options struct {
	State          models.ScheduleState // persisted state loaded at startup
	CycleTimeout   time.Duration        // wall-clock ceiling per cycle, default 3m
	RotationWindow int                  // recently-used topics to avoid, default 1
	Profile        models.AspectProfile // image aspect profile
	Cron           *cronexpr.Expression // optional; overrides Interval for next-fire
	Now            func() time.Time     // clock, default time.Now
	Seed           int64                // rand seed, 0 seeds from the clock
	OnRecord       func(models.PostRecord)
}

// Scheduler coordinates one cycle at a time. The mutex is the only lock
// in the system: Tick and manual triggers contend on it with TryLock, so
// an in-flight cycle makes a timed trigger a no-op and a manual trigger
// a busy error. ScheduleState is mutated only while holding it; readers
// get consistent copies through an atomic snapshot pointer instead of
// blocking behind a running cycle.
type Scheduler struct {
	generator ContentGenerator
	renderer  ImageRenderer
	publisher Publisher
	history   History
	states    StateStore
	topics    TopicSource
	archive   ArtifactArchive // may be nil

	cycleTimeout   time.Duration
	rotationWindow int
	profile        models.AspectProfile
	cron           *cronexpr.Expression
	now            func() time.Time
	onRecord       func(models.PostRecord)

	mu       sync.Mutex // cycle exclusion; also guards state writes and rng
	rng      *rand.Rand
	state    models.ScheduleState
	snapshot atomic.Pointer[models.ScheduleState]
}

// New creates a Scheduler around the pipeline components.
func New(gen ContentGenerator, renderer ImageRenderer, pub Publisher,
	history History, states StateStore, topics TopicSource,
	archive ArtifactArchive, opts Options) *Scheduler {

	if opts.CycleTimeout == 0 {
		opts.CycleTimeout = 3 * time.Minute
	}
	if opts.RotationWindow == 0 {
		opts.RotationWindow = 1
	}
	if opts.Profile == "" {
		opts.Profile = models.ProfileWide
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.State.Interval == 0 {
		opts.State.Interval = 24 * time.Hour
	}

	s := &Scheduler{
		generator:      gen,
		renderer:       renderer,
		publisher:      pub,
		history:        history,
		states:         states,
		topics:         topics,
		archive:        archive,
		cycleTimeout:   opts.CycleTimeout,
		rotationWindow: opts.RotationWindow,
		profile:        opts.Profile,
		cron:           opts.Cron,
		now:            opts.Now,
		onRecord:       opts.OnRecord,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		state:          opts.State.Clone(),
	}
	s.publishSnapshot()
	return s
}

// Snapshot returns a consistent copy of the schedule state. Never blocks,
// even while a cycle is running.
func (s *Scheduler) Snapshot() models.ScheduleState {
	return s.snapshot.Load().Clone()
}

// Tick is called by the timer loop. It runs a timed cycle when the
// schedule is enabled and due; otherwise it is a no-op. A tick arriving
// while a cycle is in flight is silently dropped rather than queued.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	snap := s.Snapshot()
	if !snap.Enabled || snap.NextFireAt.IsZero() || now.Before(snap.NextFireAt) {
		return
	}

	if !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()

	// Re-check under the lock; a setter may have intervened.
	if !s.state.Enabled || now.Before(s.state.NextFireAt) {
		return
	}

	if _, err := s.cycle(ctx, TriggerTimed); err != nil {
		slog.Error("timed cycle persistence failed", "error", err)
	}
}

// RunCycle executes exactly one produce-and-publish cycle and returns the
// resulting record, success or terminal failure. A manual trigger while a
// cycle is in flight returns ErrBusy immediately.
func (s *Scheduler) RunCycle(ctx context.Context, trigger string) (*models.PostRecord, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	return s.cycle(ctx, trigger)
}

// SetEnabled turns the timed schedule on or off, effective on the next
// tick. Enabling with a stale or unset next-fire time schedules the next
// cycle one full interval out.
func (s *Scheduler) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Enabled = enabled
	now := s.now()
	if enabled && (s.state.NextFireAt.IsZero() || s.state.NextFireAt.Before(now)) {
		s.state.NextFireAt = s.nextFire(now)
	}
	return s.saveState(ctx)
}

// SetInterval changes the posting interval and reschedules the next fire
// relative to now.
func (s *Scheduler) SetInterval(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Interval = interval
	s.state.NextFireAt = s.nextFire(s.now())
	return s.saveState(ctx)
}

// cycle runs one produce-and-publish pass. Caller holds the lock. The
// returned error reports persistence problems only; generation and
// publish failures always still yield a record.
func (s *Scheduler) cycle(parent context.Context, trigger string) (*models.PostRecord, error) {
	ctx, cancel := context.WithTimeout(parent, s.cycleTimeout)
	defer cancel()

	started := s.now()
	slog.Info("cycle started", "trigger", trigger)

	topic, ok, err := s.selectTopic(ctx)
	if err != nil {
		return nil, fmt.Errorf("select topic: %w", err)
	}
	if !ok {
		// Fast fail: no generator or publisher call, but the cycle still
		// leaves a record behind.
		rec := s.newRecord(started)
		rec.Status = models.PostFailed
		rec.FailureReason = strptr(ReasonNoTopics)
		rec.Method = models.MethodFallback
		slog.Warn("cycle failed: no topics enabled")
		return s.finish(ctx, trigger, started, rec, 0)
	}

	draft := s.generator.Generate(ctx, topic)
	image := s.renderer.Render(draft, s.profile, s.rng.Int63())

	rec := s.newRecord(started)
	rec.TopicID = topic.ID
	rec.Body = draft.Body
	rec.Hashtags = draft.Hashtags
	rec.Method = draft.Method

	result, pubErr := s.publisher.Publish(ctx, draft, image)
	rec.Attempts = result.Attempts
	if pubErr != nil {
		kind := publish.KindOf(pubErr)
		reason := string(kind)
		var pe *publish.Error
		if errors.As(pubErr, &pe) {
			reason = pe.Reason()
		}
		rec.Status = models.PostFailed
		rec.FailureReason = &reason
		slog.Error("cycle publish failed",
			"topic", topic.Name,
			"kind", kind,
			"attempts", rec.Attempts,
		)
	} else {
		rec.Status = models.PostSucceeded
		rec.PlatformPostID = strptr(result.PlatformPostID)
		rec.ImageRef = s.archiveImage(ctx, topic, rec.ID, image)
		slog.Info("cycle published",
			"topic", topic.Name,
			"post_id", result.PlatformPostID,
			"method", draft.Method,
			"attempts", rec.Attempts,
		)
	}

	s.rotate(topic.ID)
	return s.finish(ctx, trigger, started, rec, rec.Attempts)
}

// finish appends the record, advances the schedule, publishes the new
// snapshot, and emits metrics. Always returns the record.
func (s *Scheduler) finish(ctx context.Context, trigger string, started time.Time, rec *models.PostRecord, attempts int) (*models.PostRecord, error) {
	var errs []error

	if err := s.history.Append(ctx, rec); err != nil {
		errs = append(errs, fmt.Errorf("append record: %w", err))
	}

	s.state.LastStatus = string(rec.Status)
	s.state.NextFireAt = s.nextFire(started)
	if err := s.saveState(ctx); err != nil {
		errs = append(errs, err)
	}

	metrics.ObserveCycle(trigger, string(rec.Status),
		s.now().Sub(started).Seconds(), attempts,
		rec.Method == models.MethodFallback)

	if s.onRecord != nil {
		s.onRecord(*rec)
	}

	return rec, errors.Join(errs...)
}

// selectTopic picks the next topic: enabled only, highest priority,
// ties broken by avoiding the rotation window, then randomly. ok is
// false when nothing is enabled.
func (s *Scheduler) selectTopic(ctx context.Context) (models.Topic, bool, error) {
	enabled, err := s.topics.ListEnabled(ctx)
	if err != nil {
		return models.Topic{}, false, err
	}
	if len(enabled) == 0 {
		return models.Topic{}, false, nil
	}

	best := enabled[0].Priority
	for _, t := range enabled[1:] {
		if t.Priority > best {
			best = t.Priority
		}
	}

	var candidates []models.Topic
	for _, t := range enabled {
		if t.Priority == best {
			candidates = append(candidates, t)
		}
	}

	// Prefer topics outside the recently-used window; if every candidate
	// was recent (small topic sets), fall back to the whole tier.
	var fresh []models.Topic
	for _, t := range candidates {
		if !intsContain(s.state.RecentTopics, t.ID) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) > 0 {
		candidates = fresh
	}

	return candidates[s.rng.Intn(len(candidates))], true, nil
}

// rotate pushes a topic id onto the recency cursor, keeping the window
// size bounded.
func (s *Scheduler) rotate(topicID int) {
	recent := append(s.state.RecentTopics, topicID)
	if len(recent) > s.rotationWindow {
		recent = recent[len(recent)-s.rotationWindow:]
	}
	s.state.RecentTopics = recent
}

// nextFire computes when the next timed cycle runs: the cron expression
// when one is configured, otherwise one interval from the reference time.
func (s *Scheduler) nextFire(from time.Time) time.Time {
	if s.cron != nil {
		return s.cron.Next(from)
	}
	return from.Add(s.state.Interval)
}

// archiveImage stores the artifact as a side artifact of the record.
// Archival failures degrade to an empty reference; the post already went
// out and must still be recorded.
func (s *Scheduler) archiveImage(ctx context.Context, topic models.Topic, id uuid.UUID, image models.ImageArtifact) string {
	if s.archive == nil || len(image.Data) == 0 {
		return ""
	}

	key := fmt.Sprintf("posts/%s-%s.jpg", slug.Generate(topic.Name), id)
	ref, err := s.archive.Archive(ctx, key, image.Data, image.ContentType)
	if err != nil {
		slog.Warn("artifact archive failed", "key", key, "error", err)
		return ""
	}
	return ref
}

func (s *Scheduler) newRecord(created time.Time) *models.PostRecord {
	return &models.PostRecord{
		ID:        uuid.New(),
		CreatedAt: created,
	}
}

// saveState persists the state and refreshes the read snapshot. Caller
// holds the lock.
func (s *Scheduler) saveState(ctx context.Context) error {
	s.state.UpdatedAt = s.now()
	s.publishSnapshot()
	if err := s.states.Save(ctx, s.state); err != nil {
		return fmt.Errorf("save schedule state: %w", err)
	}
	return nil
}

func (s *Scheduler) publishSnapshot() {
	snap := s.state.Clone()
	s.snapshot.Store(&snap)
}

func intsContain(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func strptr(s string) *string { return &s }
