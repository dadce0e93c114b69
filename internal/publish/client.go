// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish talks to the external platform API: it uploads media,
// submits posts, maps provider errors into the local taxonomy, and
// retries recoverable failures with exponential backoff.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client is the HTTP client for the platform publish API. The token is an
// opaque credential supplied by configuration; the client never inspects
// it beyond sending it as a bearer header.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a platform API client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadMedia uploads image bytes and returns the platform's media
// reference for use in a subsequent CreatePost call.
func (c *Client) UploadMedia(ctx context.Context, data []byte, contentType string) (string, error) {
	body := uploadRequest{
		Data:        base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
	}

	var resp uploadResponse
	if err := c.doJSON(ctx, StageUpload, "/media", body, &resp); err != nil {
		return "", err
	}
	if resp.MediaID == "" {
		return "", &Error{Kind: KindUnknown, Stage: StageUpload, Err: fmt.Errorf("empty media id in response")}
	}
	return resp.MediaID, nil
}

// CreatePost submits the post text with an optional media reference and
// returns the platform-assigned post id.
func (c *Client) CreatePost(ctx context.Context, text, mediaRef string) (string, error) {
	body := postRequest{Text: text, MediaID: mediaRef}

	var resp postResponse
	if err := c.doJSON(ctx, StagePost, "/posts", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &Error{Kind: KindUnknown, Stage: StagePost, Err: fmt.Errorf("empty post id in response")}
	}
	return resp.ID, nil
}

// doJSON performs one POST call and classifies any failure.
func (c *Client) doJSON(ctx context.Context, stage, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &Error{Kind: KindValidate, Stage: stage, Err: fmt.Errorf("marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindUnknown, Stage: stage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport errors and timeouts are recoverable network failures.
		return &Error{Kind: KindNetwork, Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Stage: stage, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &Error{
			Kind:       classifyStatus(resp.StatusCode),
			Stage:      stage,
			RetryAfter: retryAfterHint(resp),
			Err:        fmt.Errorf("platform API error (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: KindUnknown, Stage: stage, Err: fmt.Errorf("unmarshal: %w", err)}
	}
	return nil
}

// retryAfterHint parses the Retry-After header, seconds form only; the
// date form is rare enough on rate limits that it is treated as absent.
func retryAfterHint(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// --- platform API request/response types ---

type uploadRequest struct {
	Data        string `json:"data"`
	ContentType string `json:"content_type"`
}

type uploadResponse struct {
	MediaID string `json:"media_id"`
}

type postRequest struct {
	Text    string `json:"text"`
	MediaID string `json:"media_id,omitempty"`
}

type postResponse struct {
	ID string `json:"id"`
}
