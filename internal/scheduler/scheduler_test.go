// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pulsepost/internal/models"
	"pulsepost/internal/publish"
)

type fakeGenerator struct {
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, topic models.Topic) models.ContentDraft {
	f.calls++
	return models.ContentDraft{
		Topic:    topic,
		Body:     "About " + topic.Name,
		Hashtags: []string{"#Bitcoin"},
		Method:   models.MethodPrimary,
	}
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ models.ContentDraft, profile models.AspectProfile, _ int64) models.ImageArtifact {
	return models.ImageArtifact{Data: []byte{0x01}, Profile: profile, ContentType: "image/jpeg"}
}

type fakePublisher struct {
	mu      sync.Mutex
	result  publish.Result
	err     error
	started chan struct{} // closed on first call when non-nil
	release chan struct{} // blocks the call when non-nil
	calls   int
}

func (f *fakePublisher) Publish(context.Context, models.ContentDraft, models.ImageArtifact) (publish.Result, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if first && f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

type fakeHistory struct {
	mu      sync.Mutex
	records []models.PostRecord
	err     error
}

func (f *fakeHistory) Append(_ context.Context, rec *models.PostRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *rec)
	return nil
}

type fakeStates struct {
	mu    sync.Mutex
	saved []models.ScheduleState
}

func (f *fakeStates) Save(_ context.Context, state models.ScheduleState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, state)
	return nil
}

type fakeTopics struct {
	topics []models.Topic
	err    error
}

func (f *fakeTopics) ListEnabled(context.Context) ([]models.Topic, error) {
	return f.topics, f.err
}

type env struct {
	gen    *fakeGenerator
	pub    *fakePublisher
	hist   *fakeHistory
	states *fakeStates
	topics *fakeTopics
	now    time.Time
	sched  *Scheduler
}

func newEnv(t *testing.T, topics []models.Topic, opts Options) *env {
	t.Helper()

	e := &env{
		gen:    &fakeGenerator{},
		pub:    &fakePublisher{result: publish.Result{PlatformPostID: "p-1", Attempts: 1}},
		hist:   &fakeHistory{},
		states: &fakeStates{},
		topics: &fakeTopics{topics: topics},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return e.now }
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	if opts.State.Interval == 0 {
		opts.State.Interval = time.Hour
	}

	e.sched = New(e.gen, fakeRenderer{}, e.pub, e.hist, e.states, e.topics, nil, opts)
	return e
}

func oneTopic() []models.Topic {
	return []models.Topic{{ID: 1, Name: "Bitcoin Basics", Category: models.CategoryBitcoin, Enabled: true, Priority: 1}}
}

func TestRunCycleSuccess(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{})

	rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if rec.Status != models.PostSucceeded {
		t.Errorf("status = %v, want %v", rec.Status, models.PostSucceeded)
	}
	if rec.TopicID != 1 {
		t.Errorf("topic id = %d, want 1", rec.TopicID)
	}
	if rec.PlatformPostID == nil || *rec.PlatformPostID != "p-1" {
		t.Errorf("platform post id = %v, want p-1", rec.PlatformPostID)
	}
	if rec.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", rec.Attempts)
	}
	if rec.Method != models.MethodPrimary {
		t.Errorf("method = %v", rec.Method)
	}
	if len(e.hist.records) != 1 {
		t.Fatalf("appended %d records, want 1", len(e.hist.records))
	}

	snap := e.sched.Snapshot()
	if snap.LastStatus != string(models.PostSucceeded) {
		t.Errorf("last status = %q", snap.LastStatus)
	}
	if want := e.now.Add(time.Hour); !snap.NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", snap.NextFireAt, want)
	}
	if len(snap.RecentTopics) != 1 || snap.RecentTopics[0] != 1 {
		t.Errorf("recent topics = %v, want [1]", snap.RecentTopics)
	}
}

func TestRunCycleBusy(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{})
	e.pub.started = make(chan struct{})
	e.pub.release = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.sched.RunCycle(context.Background(), TriggerManual)
	}()

	<-e.pub.started
	if _, err := e.sched.RunCycle(context.Background(), TriggerManual); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent RunCycle() error = %v, want ErrBusy", err)
	}

	// Snapshot reads must not block behind the in-flight cycle.
	_ = e.sched.Snapshot()

	close(e.pub.release)
	<-done
}

func TestRunCycleNoTopics(t *testing.T) {
	e := newEnv(t, nil, Options{})

	rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if rec.Status != models.PostFailed {
		t.Errorf("status = %v, want %v", rec.Status, models.PostFailed)
	}
	if rec.FailureReason == nil || *rec.FailureReason != ReasonNoTopics {
		t.Errorf("reason = %v, want %q", rec.FailureReason, ReasonNoTopics)
	}
	if rec.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", rec.Attempts)
	}
	if e.gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", e.gen.calls)
	}
	if e.pub.calls != 0 {
		t.Errorf("publisher called %d times, want 0", e.pub.calls)
	}
	if len(e.hist.records) != 1 {
		t.Errorf("appended %d records, want 1 failed record", len(e.hist.records))
	}
}

func TestRunCyclePublishFailureRecordsReason(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{})
	e.pub.result = publish.Result{Attempts: 3}
	e.pub.err = &publish.Error{Kind: publish.KindRateLimit, Stage: publish.StagePost, Err: errors.New("429")}

	rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if rec.Status != models.PostFailed {
		t.Errorf("status = %v, want %v", rec.Status, models.PostFailed)
	}
	if rec.FailureReason == nil || *rec.FailureReason != "post: RateLimitError" {
		t.Errorf("reason = %v, want \"post: RateLimitError\"", rec.FailureReason)
	}
	if rec.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", rec.Attempts)
	}
	if rec.PlatformPostID != nil {
		t.Errorf("platform post id = %v, want nil on failure", rec.PlatformPostID)
	}
}

func TestTickRunsWhenDue(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{State: models.ScheduleState{
		Enabled:    true,
		Interval:   time.Hour,
		NextFireAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	}})

	e.sched.Tick(context.Background(), e.now)

	if len(e.hist.records) != 1 {
		t.Fatalf("tick appended %d records, want 1", len(e.hist.records))
	}
	if want := e.now.Add(time.Hour); !e.sched.Snapshot().NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", e.sched.Snapshot().NextFireAt, want)
	}
}

func TestTickSkipsWhenDisabledOrNotDue(t *testing.T) {
	past := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	future := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	disabled := newEnv(t, oneTopic(), Options{State: models.ScheduleState{Interval: time.Hour, NextFireAt: past}})
	disabled.sched.Tick(context.Background(), disabled.now)
	if len(disabled.hist.records) != 0 {
		t.Error("disabled schedule still ran a cycle")
	}

	notDue := newEnv(t, oneTopic(), Options{State: models.ScheduleState{Enabled: true, Interval: time.Hour, NextFireAt: future}})
	notDue.sched.Tick(context.Background(), notDue.now)
	if len(notDue.hist.records) != 0 {
		t.Error("not-due schedule still ran a cycle")
	}
}

func TestTickDroppedWhileBusy(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{State: models.ScheduleState{
		Enabled:    true,
		Interval:   time.Hour,
		NextFireAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	}})
	e.pub.started = make(chan struct{})
	e.pub.release = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.sched.RunCycle(context.Background(), TriggerManual)
	}()
	<-e.pub.started

	e.sched.Tick(context.Background(), e.now)

	close(e.pub.release)
	<-done

	if e.pub.calls != 1 {
		t.Errorf("publisher called %d times, want 1; tick should be dropped", e.pub.calls)
	}
}

func TestTopicRotationAvoidsImmediateRepeat(t *testing.T) {
	topics := []models.Topic{
		{ID: 1, Name: "Bitcoin Basics", Category: models.CategoryBitcoin, Enabled: true, Priority: 1},
		{ID: 2, Name: "Coinjoin Privacy", Category: models.CategoryPrivacy, Enabled: true, Priority: 1},
	}
	e := newEnv(t, topics, Options{RotationWindow: 1})

	var prev int
	for i := 0; i < 10; i++ {
		rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if i > 0 && rec.TopicID == prev {
			t.Fatalf("cycle %d repeated topic %d", i, rec.TopicID)
		}
		prev = rec.TopicID
	}
}

func TestTopicSelectionPrefersPriority(t *testing.T) {
	topics := []models.Topic{
		{ID: 1, Name: "Bitcoin Basics", Category: models.CategoryBitcoin, Enabled: true, Priority: 1},
		{ID: 2, Name: "Nostr Relays", Category: models.CategoryNostr, Enabled: true, Priority: 5},
	}
	e := newEnv(t, topics, Options{})

	for i := 0; i < 5; i++ {
		rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if rec.TopicID != 2 {
			t.Fatalf("cycle %d picked topic %d, want the priority-5 topic", i, rec.TopicID)
		}
	}
}

func TestSingleTopicRepeatsDespiteRotation(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{RotationWindow: 1})

	for i := 0; i < 3; i++ {
		rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if rec.TopicID != 1 {
			t.Fatalf("cycle %d picked topic %d", i, rec.TopicID)
		}
		if rec.Status != models.PostSucceeded {
			t.Fatalf("cycle %d status = %v", i, rec.Status)
		}
	}
}

func TestSetEnabledSchedulesNextFire(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{})

	if err := e.sched.SetEnabled(context.Background(), true); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}

	snap := e.sched.Snapshot()
	if !snap.Enabled {
		t.Error("snapshot not enabled")
	}
	if want := e.now.Add(time.Hour); !snap.NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", snap.NextFireAt, want)
	}
	if len(e.states.saved) == 0 {
		t.Error("state was not persisted")
	}
}

func TestSetIntervalReschedules(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{})

	if err := e.sched.SetInterval(context.Background(), 30*time.Minute); err != nil {
		t.Fatalf("SetInterval() error = %v", err)
	}

	snap := e.sched.Snapshot()
	if snap.Interval != 30*time.Minute {
		t.Errorf("interval = %v, want 30m", snap.Interval)
	}
	if want := e.now.Add(30 * time.Minute); !snap.NextFireAt.Equal(want) {
		t.Errorf("next fire = %v, want %v", snap.NextFireAt, want)
	}

	if err := e.sched.SetInterval(context.Background(), 0); err == nil {
		t.Error("SetInterval(0) error = nil, want validation error")
	}
}

func TestRunCycleAppendFailureStillReturnsRecord(t *testing.T) {
	e := newEnv(t, oneTopic(), Options{})
	e.hist.err = errors.New("db down")

	rec, err := e.sched.RunCycle(context.Background(), TriggerManual)
	if err == nil {
		t.Error("RunCycle() error = nil, want append failure")
	}
	if rec == nil || rec.Status != models.PostSucceeded {
		t.Errorf("record = %+v, want succeeded record despite append failure", rec)
	}
}

func TestOnRecordHook(t *testing.T) {
	var got []models.PostRecord
	e := newEnv(t, oneTopic(), Options{OnRecord: func(rec models.PostRecord) {
		got = append(got, rec)
	}})

	if _, err := e.sched.RunCycle(context.Background(), TriggerManual); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("hook called %d times, want 1", len(got))
	}
	if got[0].Status != models.PostSucceeded {
		t.Errorf("hook record status = %v", got[0].Status)
	}
}
