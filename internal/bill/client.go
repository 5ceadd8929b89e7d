package bill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
)

// ClientConfig holds the settings of a remote bill store
type ClientConfig struct {
	BaseURL   string
	BasicAuth BasicAuth
	RetryMax  int
	Timeout   time.Duration
}

// Client is a bill store reached over HTTP
type Client struct {
	baseURL *url.URL
	auth    BasicAuth
	http    *retryablehttp.Client
	// send carries requests that must not reach the server twice
	send *retryablehttp.Client
}

// NewClient creates a Client for the server at cfg.BaseURL
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing store url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("store url must be absolute: %q", cfg.BaseURL)
	}

	httpClient := newRetryableClient(cfg)
	sendClient := newRetryableClient(cfg)
	sendClient.CheckRetry = retryBeforeSend

	return &Client{baseURL: base, auth: cfg.BasicAuth, http: httpClient, send: sendClient}, nil
}

func newRetryableClient(cfg ClientConfig) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.Logger = slog.Default()
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	return client
}

// retryBeforeSend retries only when the connection could not be opened,
// so the server never sees the request twice.
func retryBeforeSend(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true, nil
	}
	return false, nil
}

// endpoint joins path onto the store URL, keeping any prefix it carries
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends req through client and returns the body of a successful response.
// Failures are marked with their kind.
func (c *Client) do(client *retryablehttp.Client, req *retryablehttp.Request) ([]byte, error) {
	if c.auth.Enabled() {
		req.SetBasicAuth(c.auth.Username, c.auth.Password)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, MarkAs(fmt.Errorf("contacting bill store: %w", err), ErrNetwork)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, MarkAs(fmt.Errorf("reading bill store response: %w", err), ErrNetwork)
	}

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError builds the error of a failed response, e.g. "Erreur 404: Not found"
func statusError(code int, body []byte) error {
	msg := http.StatusText(code)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	err := errors.Newf("Erreur %d: %s", code, msg)
	switch {
	case code == http.StatusNotFound:
		return MarkAs(err, ErrNotFound)
	case code == http.StatusUnsupportedMediaType:
		return MarkAs(MarkAs(err, ErrNotPicture), ErrValidation)
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return MarkAs(err, ErrServer)
	case code < 500:
		return MarkAs(err, ErrValidation)
	default:
		return MarkAs(err, ErrServer)
	}
}

// List returns the bills owned by email
func (c *Client) List(ctx context.Context, email string) ([]Bill, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint("/api/bills", url.Values{"email": {email}}), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	body, err := c.do(c.http, req)
	if err != nil {
		return nil, err
	}

	var bills []Bill
	if err := json.Unmarshal(body, &bills); err != nil {
		return nil, MarkAs(fmt.Errorf("decoding bills: %w", err), ErrServer)
	}
	return bills, nil
}

// UploadFile sends a receipt for email and returns the URL it is served at
func (c *Client) UploadFile(ctx context.Context, email string, file AttachedFile) (string, error) {
	if file.Body == nil {
		return "", NewValidationError("the uploaded file is empty")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("email", email); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/bills/files", nil), buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(c.send, req)
	if err != nil {
		return "", err
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return "", MarkAs(fmt.Errorf("decoding upload response: %w", err), ErrServer)
	}
	return c.baseURL.JoinPath(uploaded.FileURL).String(), nil
}

// Create sends a new bill and returns it as stored
func (c *Client) Create(ctx context.Context, b Bill) (Bill, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return Bill{}, fmt.Errorf("encoding bill: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/bills", nil), payload)
	if err != nil {
		return Bill{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(c.send, req)
	if err != nil {
		return Bill{}, err
	}

	var created Bill
	if err := json.Unmarshal(body, &created); err != nil {
		return Bill{}, MarkAs(fmt.Errorf("decoding bill: %w", err), ErrServer)
	}
	return created, nil
}
