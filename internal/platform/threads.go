package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"autopost/internal/models"
)

// ThreadsConfig holds the Threads Graph API access settings.
type ThreadsConfig struct {
	APIURL      string // override for tests; defaults to the public Graph API
	AccessToken string
}

const (
	defaultThreadsAPIURL = "https://graph.threads.net"

	// container processing poll bounds (the Graph API finishes media
	// containers asynchronously before they can be published)
	containerPollInterval = 2 * time.Second
	containerPollMax      = 15
)

// ThreadsClient posts through the Threads Graph API two-step
// container -> publish flow.
type ThreadsClient struct {
	client       *http.Client
	cfg          ThreadsConfig
	pollInterval time.Duration // injectable for tests
}

func NewThreadsClient(cfg ThreadsConfig) *ThreadsClient {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultThreadsAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &ThreadsClient{
		client:       &http.Client{Timeout: 30 * time.Second},
		cfg:          cfg,
		pollInterval: containerPollInterval,
	}
}

func (c *ThreadsClient) Name() string { return models.PlatformThreads }

type threadsIDResponse struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Post creates a media container, waits for it to finish processing, then
// publishes it. Returns the published post's ID.
func (c *ThreadsClient) Post(ctx context.Context, text, imageURL string) (string, error) {
	if c.cfg.AccessToken == "" {
		return "", &Error{Platform: c.Name(), Reason: "access token not configured"}
	}

	containerID, err := c.createContainer(ctx, text, imageURL)
	if err != nil {
		return "", err
	}
	if err := c.awaitContainer(ctx, containerID); err != nil {
		return "", err
	}
	return c.publishContainer(ctx, containerID)
}

func (c *ThreadsClient) createContainer(ctx context.Context, text, imageURL string) (string, error) {
	params := url.Values{}
	params.Set("text", text)
	if imageURL != "" {
		params.Set("media_type", "IMAGE")
		params.Set("image_url", imageURL)
	} else {
		params.Set("media_type", "TEXT")
	}

	parsed, err := c.call(ctx, http.MethodPost, "/v1.0/me/threads", params)
	if err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", &Error{Platform: c.Name(), Reason: "missing container id in response"}
	}
	return parsed.ID, nil
}

// awaitContainer polls container status until FINISHED, with a bounded
// number of attempts. An exhausted poll is not fatal: publishing is still
// attempted, matching the Graph API guidance for slow processing.
func (c *ThreadsClient) awaitContainer(ctx context.Context, containerID string) error {
	params := url.Values{}
	params.Set("fields", "status")

	for attempt := 0; attempt < containerPollMax; attempt++ {
		select {
		case <-ctx.Done():
			return &Error{Platform: c.Name(), Reason: "canceled while awaiting container", Err: ctx.Err()}
		case <-time.After(c.pollInterval):
		}

		parsed, err := c.call(ctx, http.MethodGet, "/v1.0/"+containerID, params)
		if err != nil {
			continue // transient status-check failure; keep polling
		}
		switch parsed.Status {
		case "FINISHED", "PUBLISHED":
			return nil
		case "ERROR":
			reason := parsed.ErrorMessage
			if reason == "" {
				reason = "container processing failed"
			}
			return &Error{Platform: c.Name(), Reason: reason}
		}
	}
	return nil
}

func (c *ThreadsClient) publishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)

	parsed, err := c.call(ctx, http.MethodPost, "/v1.0/me/threads_publish", params)
	if err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", &Error{Platform: c.Name(), Reason: "missing post id in publish response"}
	}
	return parsed.ID, nil
}

// call performs one Graph API request and decodes the common id/status shape.
func (c *ThreadsClient) call(ctx context.Context, method, path string, params url.Values) (*threadsIDResponse, error) {
	endpoint := c.cfg.APIURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, &Error{Platform: c.Name(), Reason: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Platform: c.Name(), Reason: "call threads api", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Platform: c.Name(), Reason: "read response", Err: err}
	}

	var parsed threadsIDResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		reason := ""
		if parsed.Error != nil {
			reason = parsed.Error.Message
		}
		if reason == "" {
			reason = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return nil, &Error{Platform: c.Name(), Reason: reason}
	}
	return &parsed, nil
}
