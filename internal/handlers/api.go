// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the PulsePost API.
// Handlers receive their dependencies through the API struct and speak
// JSON except where noted (CSV export, QR provisioning).
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"pulsepost/internal/cache"
	"pulsepost/internal/models"
	"pulsepost/internal/scheduler"
	"pulsepost/internal/store"
)

const maxHistoryLimit = 500

// Controller is the scheduler surface the API drives.
type Controller interface {
	RunCycle(ctx context.Context, trigger string) (*models.PostRecord, error)
	Snapshot() models.ScheduleState
	SetEnabled(ctx context.Context, enabled bool) error
	SetInterval(ctx context.Context, interval time.Duration) error
}

// HistoryStore is the record surface the API reads and exports.
type HistoryStore interface {
	List(ctx context.Context, filter store.RecordFilter) ([]models.PostRecord, error)
	Latest(ctx context.Context) (*models.PostRecord, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	Clear(ctx context.Context) error
}

// TopicsStore is the topic catalog surface the API manages.
type TopicsStore interface {
	List(ctx context.Context) ([]models.Topic, error)
	FindByID(ctx context.Context, id int) (*models.Topic, error)
	Update(ctx context.Context, id int, enabled bool, priority int) error
}

// API groups the HTTP handlers and their dependencies.
type API struct {
	sched      Controller
	records    HistoryStore
	topics     TopicsStore
	status     *cache.StatusCache
	totpSecret string
	issuer     string
}

// NewAPI constructs the handler set. status may be a nil-client cache;
// totpSecret empty disables TOTP confirmation on destructive endpoints.
func NewAPI(sched Controller, records HistoryStore, topics TopicsStore,
	status *cache.StatusCache, totpSecret string) *API {
	return &API{
		sched:      sched,
		records:    records,
		topics:     topics,
		status:     status,
		totpSecret: totpSecret,
		issuer:     "PulsePost",
	}
}

// statusResponse is the GET /api/status payload.
type statusResponse struct {
	Enabled    bool               `json:"enabled"`
	Interval   string             `json:"interval"`
	NextFireAt *time.Time         `json:"next_fire_at,omitempty"`
	LastStatus string             `json:"last_status,omitempty"`
	LastPost   *models.PostRecord `json:"last_post,omitempty"`
}

// Status reports the schedule state and the most recent post. The latest
// record is served from the cache when warm, falling back to the store.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	snap := a.sched.Snapshot()

	resp := statusResponse{
		Enabled:    snap.Enabled,
		Interval:   snap.Interval.String(),
		LastStatus: snap.LastStatus,
	}
	if !snap.NextFireAt.IsZero() {
		t := snap.NextFireAt
		resp.NextFireAt = &t
	}

	if rec, ok := a.status.Latest(r.Context()); ok {
		resp.LastPost = rec
	} else {
		rec, err := a.records.Latest(r.Context())
		if err != nil {
			slog.Error("load latest record", "error", err)
		} else if rec != nil {
			resp.LastPost = rec
			a.status.SetLatest(r.Context(), *rec)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// RunCycle triggers one produce-and-publish cycle immediately. Responds
// 409 when a cycle is already in flight.
func (a *API) RunCycle(w http.ResponseWriter, r *http.Request) {
	rec, err := a.sched.RunCycle(r.Context(), scheduler.TriggerManual)
	if errors.Is(err, scheduler.ErrBusy) {
		writeError(w, http.StatusConflict, "a cycle is already running")
		return
	}
	if rec == nil {
		slog.Error("manual cycle failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cycle failed")
		return
	}
	if err != nil {
		// The cycle produced a record but persistence was degraded; the
		// caller still gets the outcome.
		slog.Error("manual cycle persistence failed", "error", err)
	}

	writeJSON(w, http.StatusOK, rec)
}

// scheduleRequest is the PUT /api/schedule payload. Fields are pointers
// so a partial update touches only what the caller sent.
type scheduleRequest struct {
	Enabled  *bool   `json:"enabled"`
	Interval *string `json:"interval"`
}

// UpdateSchedule enables or disables the timed schedule and/or changes
// the posting interval.
func (a *API) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Enabled == nil && req.Interval == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Interval != nil {
		d, err := time.ParseDuration(*req.Interval)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "interval must be a positive duration, e.g. \"24h\"")
			return
		}
		if err := a.sched.SetInterval(r.Context(), d); err != nil {
			slog.Error("set interval", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update schedule")
			return
		}
	}

	if req.Enabled != nil {
		if err := a.sched.SetEnabled(r.Context(), *req.Enabled); err != nil {
			slog.Error("set enabled", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update schedule")
			return
		}
	}

	snap := a.sched.Snapshot()
	resp := statusResponse{
		Enabled:    snap.Enabled,
		Interval:   snap.Interval.String(),
		LastStatus: snap.LastStatus,
	}
	if !snap.NextFireAt.IsZero() {
		t := snap.NextFireAt
		resp.NextFireAt = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListHistory returns post records, newest first. Supports ?status=,
// ?topic_id= and ?limit= query filters.
func (a *API) ListHistory(w http.ResponseWriter, r *http.Request) {
	var filter store.RecordFilter

	switch q := r.URL.Query().Get("status"); q {
	case "":
	case string(models.PostSucceeded), string(models.PostFailed):
		filter.Status = models.PostStatus(q)
	default:
		writeError(w, http.StatusBadRequest, "status must be \"succeeded\" or \"failed\"")
		return
	}

	if q := r.URL.Query().Get("topic_id"); q != "" {
		id, err := strconv.Atoi(q)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "topic_id must be a positive integer")
			return
		}
		filter.TopicID = id
	}

	filter.Limit = maxHistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < maxHistoryLimit {
			filter.Limit = n
		}
	}

	records, err := a.records.List(r.Context(), filter)
	if err != nil {
		slog.Error("list history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if records == nil {
		records = []models.PostRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

// ExportHistory streams the full post history as a CSV download.
func (a *API) ExportHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="post-history.csv"`)

	if err := a.records.ExportCSV(r.Context(), w); err != nil {
		// Headers are gone; all we can do is log.
		slog.Error("export history", "error", err)
	}
}

// ClearHistory deletes all post records. Destructive, so it demands a
// second factor: a TOTP code in X-Confirm-Code when a secret is
// configured, otherwise an explicit ?confirm=true.
func (a *API) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if a.totpSecret != "" {
		code := r.Header.Get("X-Confirm-Code")
		if code == "" || !totp.Validate(code, a.totpSecret) {
			writeError(w, http.StatusForbidden, "valid X-Confirm-Code header required")
			return
		}
	} else if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "pass ?confirm=true to clear all history")
		return
	}

	if err := a.records.Clear(r.Context()); err != nil {
		slog.Error("clear history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	a.status.Invalidate(r.Context())
	slog.Warn("post history cleared", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

// ListTopics returns the full topic catalog.
func (a *API) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := a.topics.List(r.Context())
	if err != nil {
		slog.Error("list topics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

// topicRequest is the PATCH /api/topics/{id} payload.
type topicRequest struct {
	Enabled  *bool `json:"enabled"`
	Priority *int  `json:"priority"`
}

// UpdateTopic toggles a topic and/or changes its selection priority.
func (a *API) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "topic id must be a positive integer")
		return
	}

	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Enabled == nil && req.Priority == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Priority != nil && *req.Priority < 1 {
		writeError(w, http.StatusBadRequest, "priority must be at least 1")
		return
	}

	topic, err := a.topics.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find topic", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update topic")
		return
	}
	if topic == nil {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}

	enabled := topic.Enabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	priority := topic.Priority
	if req.Priority != nil {
		priority = *req.Priority
	}

	if err := a.topics.Update(r.Context(), id, enabled, priority); err != nil {
		slog.Error("update topic", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update topic")
		return
	}

	topic.Enabled = enabled
	topic.Priority = priority
	writeJSON(w, http.StatusOK, topic)
}

// OTPQR serves a PNG QR code with the TOTP provisioning URI so an
// operator can enroll an authenticator app. 404 when no secret is set.
func (a *API) OTPQR(w http.ResponseWriter, r *http.Request) {
	if a.totpSecret == "" {
		writeError(w, http.StatusNotFound, "TOTP is not configured")
		return
	}

	uri := "otpauth://totp/" + a.issuer + ":admin?secret=" + a.totpSecret +
		"&issuer=" + a.issuer
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		slog.Error("encode provisioning QR", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
