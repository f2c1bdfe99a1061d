package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"lumafab/internal/domain"
)

const serviceName = "directus"

// Options configures the content-store gateway.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Client is a thin gateway to the headless CMS: create items in a
// collection and upload binary assets. Writes are independent calls with
// no transactional grouping; an upload that succeeds before a failing item
// create leaves an orphaned asset behind (known gap).
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

type itemEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type fileEnvelope struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// NewClient constructs the gateway.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      strings.TrimSpace(opts.Token),
	}
}

// Configured reports whether both endpoint and token are present.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.token != ""
}

// CreateItem creates a record in the given collection and returns the raw
// created item.
func (c *Client) CreateItem(ctx context.Context, collection string, payload any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("directus: %w: url or token missing", domain.ErrServiceUnavailable)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("directus: marshal item: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items/"+collection, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("directus: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directus: invoke: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, upstreamError(resp)
	}
	var out itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("directus: decode response: %w", err)
	}
	return out.Data, nil
}

// UploadFile uploads a binary asset via multipart form and returns the
// opaque file ID usable as a foreign key on items.
func (c *Client) UploadFile(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("directus: %w: url or token missing", domain.ErrServiceUnavailable)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file data is required", domain.ErrInvalidInput)
	}
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("directus: build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("directus: write multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("directus: finish multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("directus: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("directus: invoke: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", upstreamError(resp)
	}
	var out fileEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("directus: decode response: %w", err)
	}
	if out.Data.ID == "" {
		return "", &domain.ExternalServiceError{Service: serviceName, Status: resp.StatusCode, Body: "missing file id in response"}
	}
	return out.Data.ID, nil
}

func upstreamError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	return &domain.ExternalServiceError{Service: serviceName, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
