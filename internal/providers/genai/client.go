package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumafab/internal/domain"
)

const serviceName = "gemini"

// Options controls how the Gemini transport is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a thin typed transport over the Gemini generateContent wire
// format. Higher-level providers (prompt, image, pricing) translate domain
// requests into Request values and interpret the candidates themselves.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Content mirrors one role-tagged content block of the request/response.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part is either plain text or an inline binary payload.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded binary data with its mime type.
type InlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// ThinkingConfig tunes the model's internal reasoning budget. A budget of
// -1 leaves it unbounded.
type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// GenerationConfig carries the per-call generation knobs this service uses.
type GenerationConfig struct {
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	Temperature        float64         `json:"temperature,omitempty"`
	CandidateCount     int             `json:"candidateCount,omitempty"`
	ThinkingConfig     *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

// Request is the generateContent request envelope.
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one generated alternative.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Response is the generateContent response envelope; in streaming mode each
// SSE chunk decodes into one Response.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// FirstText returns the first non-empty text part across all candidates.
func (r *Response) FirstText() string {
	if r == nil {
		return ""
	}
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

// FirstInline returns the first inline binary part across all candidates.
func (r *Response) FirstInline() *InlineData {
	if r == nil {
		return nil
	}
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData
			}
		}
	}
	return nil
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs the transport. Callers may provide a nil HTTP
// client; a reusable one with a timeout wide enough for image generation is
// created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// GenerateContent performs a single non-streamed call against the given
// model.
func (c *Client) GenerateContent(ctx context.Context, model string, req Request) (*Response, error) {
	resp, err := c.invoke(ctx, model, "generateContent", "", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return &out, nil
}

// StreamGenerateContent performs a streamed call, decoding each SSE data
// line into a Response chunk and handing it to fn. Returning a non-nil
// error from fn stops consumption; io.EOF stops it without error.
func (c *Client) StreamGenerateContent(ctx context.Context, model string, req Request, fn func(*Response) error) error {
	resp, err := c.invoke(ctx, model, "streamGenerateContent", "alt=sse", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	// Inline image chunks routinely exceed the default scanner buffer.
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}
		var chunk Response
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return fmt.Errorf("gemini: decode stream chunk: %w", err)
		}
		if err := fn(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gemini: read stream: %w", err)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, model, verb, query string, payload Request) (*http.Response, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("gemini: %w: api key missing", domain.ErrServiceUnavailable)
	}
	endpoint := fmt.Sprintf("%s/models/%s:%s", c.baseURL, url.PathEscape(model), verb)
	if query != "" {
		endpoint += "?" + query
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: invoke: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	var apiErr errorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &domain.ExternalServiceError{Service: serviceName, Status: resp.StatusCode, Body: apiErr.Error.Message}
	}
	return &domain.ExternalServiceError{Service: serviceName, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
