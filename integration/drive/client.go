package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidConfig    = errors.New("invalid drive configuration")
	ErrTokenExchange    = errors.New("drive token exchange failed")
	ErrUploadFailed     = errors.New("drive upload failed")
	ErrUnexpectedStatus = errors.New("unexpected drive api status")
)

const (
	tokenEndpoint  = "https://oauth2.googleapis.com/token"
	uploadEndpoint = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart&fields=id,webViewLink"
)

// Config contains Google Drive OAuth credentials with environment
// variable mapping. The refresh token belongs to a service account
// dedicated to certificate storage.
type Config struct {
	ClientID     string        `env:"DRIVE_CLIENT_ID"`
	ClientSecret string        `env:"DRIVE_CLIENT_SECRET"`
	RefreshToken string        `env:"DRIVE_REFRESH_TOKEN"`
	FolderID     string        `env:"DRIVE_FOLDER_ID"`
	Timeout      time.Duration `env:"DRIVE_TIMEOUT" envDefault:"30s"`
}

// UploadResult identifies the stored file.
type UploadResult struct {
	FileID      string `json:"id"`
	WebViewLink string `json:"webViewLink"`
}

// Client uploads files to Google Drive over its plain HTTP API.
// Access tokens are exchanged from the refresh token and cached until
// shortly before expiry. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a Drive client with a bounded request timeout.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("%w: ClientID, ClientSecret, and RefreshToken are required", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}, nil
}

// Upload stores the file in the configured folder and returns its ID and
// shareable link.
func (c *Client) Upload(ctx context.Context, name, mimeType string, content io.Reader) (UploadResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return UploadResult{}, err
	}

	meta := map[string]any{"name": name}
	if c.config.FolderID != "" {
		meta["parents"] = []string{c.config.FolderID}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}

	filePart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {mimeType},
	})
	if err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}
	if _, err := io.Copy(filePart, content); err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadEndpoint, &buf)
	if err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, errors.Join(ErrUploadFailed, err)
	}
	return result, nil
}

// token returns a valid access token, refreshing when the cached one is
// within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"refresh_token": {c.config.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Join(ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Join(ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Join(ErrTokenExchange, err)
	}
	if payload.AccessToken == "" {
		return "", ErrTokenExchange
	}

	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
