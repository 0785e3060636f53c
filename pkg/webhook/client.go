// Package webhook posts operational alerts to an incoming-webhook URL.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

type Alert struct {
	Text     string    `json:"text"`
	Failures int       `json:"failures"`
	LastErr  string    `json:"lastError,omitempty"`
	At       time.Time `json:"at"`
}

type Client struct {
	httpClient *resty.Client
	webhookURL string
}

func NewWebhookClient(url string, timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		webhookURL: url,
	}
}

func (c *Client) SendAlert(ctx context.Context, alert Alert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected alert webhook status: %d, body: %s", resp.StatusCode(), resp.String())
	}

	logger.Infof("Alert delivered to webhook (status: %d)", resp.StatusCode())
	return nil
}

func (c *Client) GetURL() string {
	return c.webhookURL
}
