// Package transport talks to the chat bridge process that owns the transport
// session.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

const AuthHeader = "x-digest-auth-key"

type Config struct {
	URL     string
	AuthKey string
	Timeout time.Duration
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"isGroup"`
}

type selfResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client is the HTTP bridge implementation of the transport session.
type Client struct {
	httpClient *resty.Client
	baseURL    string

	mu     sync.Mutex
	selfID string
}

func NewClient(cfg Config) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(AuthHeader, cfg.AuthKey).
		SetError(&errorResponse{})

	return &Client{
		httpClient: client,
		baseURL:    cfg.URL,
	}
}

func (c *Client) SendMessage(ctx context.Context, to, text string) error {
	var result sendResponse

	start := time.Now()
	// A retried send can deliver twice when the bridge sent before failing.
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(sendRequest{To: to, Text: text}).
		SetResult(&result).
		AddRetryCondition(noRetry).
		Post("/send")
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if err := checkStatus(resp, http.StatusOK, http.StatusAccepted); err != nil {
		return err
	}

	logger.Infof("Sent message to %s in %v (id: %s)", to, time.Since(start), result.MessageID)
	return nil
}

func (c *Client) ListChats(ctx context.Context) ([]domain.TransportChat, error) {
	var result []chatResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/chats")
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	chats := make([]domain.TransportChat, 0, len(result))
	for _, c := range result {
		chats = append(chats, domain.TransportChat{ID: c.ID, DisplayName: c.Name, IsGroup: c.IsGroup})
	}
	return chats, nil
}

// SelfID returns the session's own address, cached until Logout.
func (c *Client) SelfID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selfID != "" {
		return c.selfID, nil
	}

	var result selfResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/me")
	if err != nil {
		return "", fmt.Errorf("failed to get self id: %w", err)
	}
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("bridge returned empty self id")
	}

	c.selfID = result.ID
	return c.selfID, nil
}

func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.selfID = ""
	c.mu.Unlock()

	resp, err := c.httpClient.R().SetContext(ctx).Post("/logout")
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return checkStatus(resp, http.StatusOK, http.StatusAccepted, http.StatusNoContent)
}

// Reconnect asks the bridge to start a fresh session; a new QR code follows.
func (c *Client) Reconnect(ctx context.Context) error {
	resp, err := c.httpClient.R().SetContext(ctx).Post("/reconnect")
	if err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}
	return checkStatus(resp, http.StatusOK, http.StatusAccepted, http.StatusNoContent)
}

func (c *Client) URL() string {
	return c.baseURL
}

func noRetry(*resty.Response, error) bool {
	return false
}

func checkStatus(resp *resty.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode() == code {
			return nil
		}
	}

	if e, ok := resp.Error().(*errorResponse); ok && e.Error != "" {
		return fmt.Errorf("bridge %s %s: status %d: %s", resp.Request.Method, resp.Request.URL, resp.StatusCode(), e.Error)
	}
	return fmt.Errorf("bridge %s %s: unexpected status %d, body: %s", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.String())
}
