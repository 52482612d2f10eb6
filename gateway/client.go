// Package gateway wraps all outbound HTTP traffic to the blog REST API.
// It is the single place where bearer credentials are attached, multipart
// bodies are assembled, and failure responses are classified into the
// apperror taxonomy. Services above it never see a raw *http.Response.
//
// Side-effect contract: every failed request publishes exactly one
// notification, except failures of the auth endpoints themselves
// (login/register), whose messaging is owned by the auth flow. A 401 on any
// other endpoint additionally clears the stored session and fires the
// session-expiry signal; the gateway itself never touches navigation or any
// other presentation state.
package gateway

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

	"github.com/rs/zerolog"

	"github.com/user/blogclient-go/apperror"
	"github.com/user/blogclient-go/config"
	"github.com/user/blogclient-go/notify"
	"github.com/user/blogclient-go/storage"
)

// maxResponseBytes caps how much of a response body is read. The API serves
// small JSON documents; anything larger is a server misbehaving.
const maxResponseBytes = 8 << 20 // 8 MiB

// Upload describes an optional binary attachment for a multipart request.
type Upload struct {
	// FieldName is the form field the file is attached under.
	FieldName string
	// FileName is the client-side file name sent in the part header.
	FileName string
	// ContentType is the MIME type of the file, e.g. "image/png".
	ContentType string
	// Data is the raw file content.
	Data []byte
}

// Client is the HTTP gateway. All requests share one underlying http.Client
// with the fixed timeout from configuration; a request that exceeds it fails
// as a network error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      storage.Store
	notifier   *notify.Notifier
	logger     zerolog.Logger
}

// NewClient creates a gateway client. The storage is consulted on every
// request for the current bearer token; the notifier receives the
// user-facing classification of every failure.
func NewClient(cfg *config.ClientConfig, store storage.Store, notifier *notify.Notifier, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		store:      store,
		notifier:   notifier,
		logger:     logger.With().Str("component", "gateway").Logger(),
	}
}

// isAuthEndpoint reports whether the path belongs to the login/register
// surface. Failures there are part of the normal credential flow, so the
// gateway suppresses its own notifications and session side effects for
// them; the auth store decides what the user sees.
func isAuthEndpoint(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

// Get performs a GET request and decodes the JSON response into target.
func (c *Client) Get(ctx context.Context, path string, target interface{}) error {
	return c.send(ctx, http.MethodGet, path, "", nil, target)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into target. target may be nil when the response body is not needed.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperror.NewValidationError("failed to encode request body", err)
	}
	return c.send(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body), target)
}

// Delete performs a DELETE request and decodes the JSON response into target.
func (c *Client) Delete(ctx context.Context, path string, target interface{}) error {
	return c.send(ctx, http.MethodDelete, path, "", nil, target)
}

// PostMultipart performs a POST request with a multipart form body.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *Upload, target interface{}) error {
	contentType, body, err := encodeMultipart(fields, file)
	if err != nil {
		return apperror.NewValidationError("failed to encode form data", err)
	}
	return c.send(ctx, http.MethodPost, path, contentType, body, target)
}

// PutMultipart performs a PUT request with a multipart form body.
func (c *Client) PutMultipart(ctx context.Context, path string, fields map[string]string, file *Upload, target interface{}) error {
	contentType, body, err := encodeMultipart(fields, file)
	if err != nil {
		return apperror.NewValidationError("failed to encode form data", err)
	}
	return c.send(ctx, http.MethodPut, path, contentType, body, target)
}

// encodeMultipart assembles a multipart/form-data body from plain fields and
// an optional file attachment. The returned content type carries the
// writer's boundary; nothing else may set the header, or the boundary would
// be lost.
func encodeMultipart(fields map[string]string, file *Upload) (string, io.Reader, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
		if file.ContentType != "" {
			header.Set("Content-Type", file.ContentType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			return "", nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return "", nil, fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to finalize form body: %w", err)
	}
	return writer.FormDataContentType(), &buf, nil
}

// send executes a request and handles the full response-phase contract:
// decode on success, classify + notify + side effects on failure.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperror.NewValidationError("failed to build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	// Attach the bearer credential whenever a token is present in durable
	// storage. The token is read per request, not cached, so a logout in
	// another part of the process takes effect immediately.
	if token, ok, storeErr := c.store.Get(storage.KeyToken); storeErr == nil && ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: transport failure or timeout.
		c.logger.Warn().Str("method", method).Str("path", path).Err(err).Msg("request failed without response")
		appErr := apperror.NewNetworkError("network error, please check your connection", err)
		if !isAuthEndpoint(path) {
			c.notifier.Error(appErr.Message)
		}
		return appErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		appErr := apperror.NewNetworkError("network error, please check your connection", err)
		if !isAuthEndpoint(path) {
			c.notifier.Error(appErr.Message)
		}
		return appErr
	}

	if resp.StatusCode >= 400 {
		return c.fail(method, path, resp.StatusCode, data)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("request completed")

	if target == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperror.NewServerError("unexpected response from server", err)
	}
	return nil
}

// fail classifies a non-2xx response, performs the per-status side effects
// and returns the resulting AppError.
func (c *Client) fail(method, path string, status int, body []byte) error {
	serverMessage := extractMessage(body)
	appErr := apperror.FromStatusCode(status, serverMessage, nil)

	c.logger.Warn().Str("method", method).Str("path", path).Int("status", status).
		Str("message", appErr.Message).Msg("request rejected")

	authFlow := isAuthEndpoint(path)

	if status == http.StatusUnauthorized {
		// The server no longer accepts our credentials. Clear the durable
		// session unconditionally; a stale token must not be re-sent.
		if err := storage.ClearSession(c.store); err != nil {
			c.logger.Error().Err(err).Msg("failed to clear stored session")
		}
		if !authFlow {
			// Everywhere except the credential flow itself this is a session
			// expiry: tell the user once and signal the application root.
			c.notifier.Error(appErr.Message)
			c.notifier.SessionExpired()
		}
		return appErr
	}

	if !authFlow {
		c.notifier.Error(appErr.Message)
	}
	return appErr
}

// extractMessage pulls the server-provided message out of an error response
// body, accepting both {"message": ...} and {"error": ...} shapes.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload apperror.ErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
