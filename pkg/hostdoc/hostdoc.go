// Package hostdoc provides a client for the host application's group document endpoint.
package hostdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome is the error body the host returns with non-2xx responses
type Outcome struct {
	Error string `json:"error"`
}

// Client loads and saves group documents on the host
type Client interface {
	repository.DocumentRepository
	// BaseURL returns the configured host base URL
	BaseURL() string
	// SetToken configures the bearer token sent with every request
	SetToken(token string)
}

// HTTPClient talks to the host over HTTP:
//
//	GET <base>/groups/<id>/data  -> group document, 404 when unknown
//	PUT <base>/groups/<id>/data  <- group document
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
	token      string
}

// NewHTTPClient creates a new host client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a new host client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) documentURL(groupID string) string {
	return fmt.Sprintf("%s/groups/%s/data", c.baseURL, url.PathEscape(groupID))
}

// do executes the request and returns the body of a 2xx response
func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("Host request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to connect to host: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Host response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var outcome Outcome
		if err := json.Unmarshal(body, &outcome); err == nil && outcome.Error != "" {
			return resp.StatusCode, nil, fmt.Errorf("host returned status %d: %s", resp.StatusCode, outcome.Error)
		}
		return resp.StatusCode, nil, fmt.Errorf("host returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}

// LoadDocument fetches the group document. A 404 maps to repository.ErrNotFound.
func (c *HTTPClient) LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(groupID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	status, body, err := c.do(req)
	if status == http.StatusNotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc := models.NewGroupData()
	if len(bytes.TrimSpace(body)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("failed to parse group document: %w", err)
	}
	return doc, nil
}

// SaveDocument replaces the group document on the host
func (c *HTTPClient) SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error {
	if doc == nil {
		doc = models.NewGroupData()
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode group document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.documentURL(groupID), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, _, err = c.do(req)
	return err
}
