package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrInvalidConfig    = errors.New("invalid whatsapp configuration")
	ErrFailedToSend     = errors.New("failed to send whatsapp message")
	ErrUnexpectedStatus = errors.New("unexpected whatsapp api status")
)

// Config contains Evolution API connection settings with environment
// variable mapping.
type Config struct {
	BaseURL  string        `env:"WHATSAPP_API_URL"`
	APIKey   string        `env:"WHATSAPP_API_KEY"`
	Instance string        `env:"WHATSAPP_INSTANCE"`
	Timeout  time.Duration `env:"WHATSAPP_TIMEOUT" envDefault:"10s"`
}

// Client talks to an Evolution API gateway. The API is treated as opaque
// HTTP: requests are fire-and-forget notifications, and failures must never
// block the main request flow.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a WhatsApp client with a bounded request timeout.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	if cfg.Instance == "" {
		return nil, fmt.Errorf("%w: Instance is required", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}, nil
}

// SendText delivers a plain text message to the given number
// (digits only, country code included).
func (c *Client) SendText(ctx context.Context, number, text string) error {
	body := map[string]any{
		"number": number,
		"text":   text,
	}
	return c.post(ctx, "/message/sendText/"+c.config.Instance, body)
}

// SendDocument delivers a document by URL, e.g. a certificate download link.
func (c *Client) SendDocument(ctx context.Context, number, fileURL, fileName, caption string) error {
	body := map[string]any{
		"number":    number,
		"mediatype": "document",
		"media":     fileURL,
		"fileName":  fileName,
		"caption":   caption,
	}
	return c.post(ctx, "/message/sendMedia/"+c.config.Instance, body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
