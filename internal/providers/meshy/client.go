package meshy

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lumafab/internal/domain"
)

const (
	serviceName = "meshy"

	// maxPollDelay caps the multiplicative backoff between status polls.
	maxPollDelay = 10 * time.Second
	// delayGrowth widens the gap between polls by 20% per attempt.
	delayGrowth = 1.2
)

// Options configures the Meshy client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Client drives the image-to-3D conversion API: task creation, status
// polls and the bounded-backoff wait loop.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     zerolog.Logger
}

// TaskOptions tune one conversion task. Zero values fall back to the
// service defaults used for lampshade geometry.
type TaskOptions struct {
	AIModel       string
	Topology      string
	TargetPolys   int
	SymmetryMode  string
	ShouldRemesh  *bool
	ShouldTexture *bool
	EnablePBR     bool
	TexturePrompt string
}

// SourceImage is either a publicly reachable URL or raw bytes that will be
// sent as an inline data URI.
type SourceImage struct {
	URL      string
	Data     []byte
	MIMEType string
}

type createTaskRequest struct {
	ImageURL       string `json:"image_url"`
	AIModel        string `json:"ai_model"`
	Topology       string `json:"topology"`
	TargetPolycount int   `json:"target_polycount"`
	SymmetryMode   string `json:"symmetry_mode"`
	ShouldRemesh   bool   `json:"should_remesh"`
	ShouldTexture  bool   `json:"should_texture"`
	EnablePBR      bool   `json:"enable_pbr"`
	TexturePrompt  string `json:"texture_prompt,omitempty"`
}

type createTaskResponse struct {
	Result string `json:"result"`
}

type taskStatusResponse struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Progress     int                   `json:"progress"`
	ModelURLs    *domain.ModelURLs     `json:"model_urls,omitempty"`
	ThumbnailURL string                `json:"thumbnail_url,omitempty"`
	TextureURLs  []domain.TextureURLs  `json:"texture_urls,omitempty"`
	TaskError    *struct {
		Message string `json:"message"`
	} `json:"task_error,omitempty"`
}

// NewClient constructs a Meshy client with sane defaults.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.meshy.ai/openapi/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		logger:     opts.Logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.token != ""
}

// CreateTask submits an image for 3D conversion and returns the opaque
// task ID assigned by the service.
func (c *Client) CreateTask(ctx context.Context, img SourceImage, opts TaskOptions) (string, error) {
	if c == nil || c.token == "" {
		return "", fmt.Errorf("meshy: %w: api key missing", domain.ErrServiceUnavailable)
	}
	imageURL, err := img.ref()
	if err != nil {
		return "", err
	}
	payload := createTaskRequest{
		ImageURL:        imageURL,
		AIModel:         stringOr(opts.AIModel, "meshy-5"),
		Topology:        stringOr(opts.Topology, "triangle"),
		TargetPolycount: intOr(opts.TargetPolys, 30000),
		SymmetryMode:    stringOr(opts.SymmetryMode, "auto"),
		ShouldRemesh:    boolOr(opts.ShouldRemesh, true),
		ShouldTexture:   boolOr(opts.ShouldTexture, true),
		EnablePBR:       opts.EnablePBR,
		TexturePrompt:   opts.TexturePrompt,
	}
	var out createTaskResponse
	if err := c.invoke(ctx, http.MethodPost, "/image-to-3d", payload, &out); err != nil {
		return "", err
	}
	if out.Result == "" {
		return "", &domain.ExternalServiceError{Service: serviceName, Status: http.StatusOK, Body: "missing task id in response"}
	}
	c.logger.Debug().Str("task_id", out.Result).Msg("meshy: conversion task created")
	return out.Result, nil
}

// TaskStatus fetches the current state of a task. PENDING with zero
// progress is normal for as long as the task sits in the remote queue.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*domain.MeshTask, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("%w: task id is required", domain.ErrInvalidInput)
	}
	var out taskStatusResponse
	if err := c.invoke(ctx, http.MethodGet, "/image-to-3d/"+taskID, nil, &out); err != nil {
		return nil, err
	}
	task := &domain.MeshTask{
		ID:           out.ID,
		Status:       domain.MeshTaskStatus(out.Status),
		Progress:     out.Progress,
		ModelURLs:    out.ModelURLs,
		ThumbnailURL: out.ThumbnailURL,
		TextureURLs:  out.TextureURLs,
	}
	if out.TaskError != nil {
		task.Error = out.TaskError.Message
	}
	return task, nil
}

// DeleteTask removes a task server-side.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("%w: task id is required", domain.ErrInvalidInput)
	}
	return c.invoke(ctx, http.MethodDelete, "/image-to-3d/"+taskID, nil, nil)
}

// WaitForCompletion polls a task until it reaches a terminal state or the
// attempt budget runs out. The first poll waits initialDelay because task
// registration on the remote side is not instantaneous; afterwards the
// inter-poll delay grows by 20% per attempt, capped at 10s. Every sleep is
// interruptible through ctx.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string, maxAttempts int, initialDelay time.Duration) (*domain.MeshTask, error) {
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}
	if err := sleepCtx(ctx, initialDelay); err != nil {
		return nil, err
	}
	delay := initialDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		task, err := c.TaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		c.logger.Debug().
			Str("task_id", taskID).
			Int("attempt", attempt).
			Str("status", string(task.Status)).
			Int("progress", task.Progress).
			Msg("meshy: poll")
		switch task.Status {
		case domain.MeshStatusSucceeded:
			return task, nil
		case domain.MeshStatusFailed, domain.MeshStatusCanceled:
			return nil, &domain.TaskFailedError{TaskID: taskID, Status: string(task.Status), Message: task.Error}
		}
		if attempt == maxAttempts {
			break
		}
		if err := sleepCtx(ctx, minDuration(delay, maxPollDelay)); err != nil {
			return nil, err
		}
		delay = time.Duration(float64(delay) * delayGrowth)
	}
	return nil, &domain.TimeoutError{TaskID: taskID, Attempts: maxAttempts}
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	if c == nil || c.token == "" {
		return fmt.Errorf("meshy: %w: api key missing", domain.ErrServiceUnavailable)
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("meshy: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("meshy: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("meshy: invoke: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return &domain.ExternalServiceError{Service: serviceName, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("meshy: decode response: %w", err)
	}
	return nil
}

func (s SourceImage) ref() (string, error) {
	if url := strings.TrimSpace(s.URL); url != "" {
		return url, nil
	}
	if len(s.Data) == 0 {
		return "", fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	mime := s.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(s.Data)), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func stringOr(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func intOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}
