// Package client is a typed HTTP client for the workshop API, used by the
// staff CLI and the finish workflow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"mk3hierros/internal/models"
)

// APIError is any non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	base   *url.URL
	http   *http.Client
	token  string
	closed int32
}

// New builds a client for baseURL. A nil httpClient gets a pooled transport
// with conservative timeouts. token may be empty when the API runs without
// auth.
func New(baseURL, token string, httpClient *http.Client) (*Client, error) {
	base, err := url.ParseRequestURI(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 15 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	return &Client{base: base, http: httpClient, token: token}, nil
}

// Close releases idle connections. It is safe to call more than once.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) ListWorks(ctx context.Context) ([]models.Work, error) {
	var works []models.Work
	err := c.doJSON(ctx, http.MethodGet, "/trabajo", nil, &works)
	return works, err
}

func (c *Client) GetWork(ctx context.Context, id int64) (models.Work, error) {
	var work models.Work
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/trabajo/%d", id), nil, &work)
	return work, err
}

func (c *Client) CreateWork(ctx context.Context, input models.WorkInput) (models.Work, error) {
	var work models.Work
	err := c.doJSON(ctx, http.MethodPost, "/trabajo", input, &work)
	return work, err
}

func (c *Client) UpdateWork(ctx context.Context, id int64, patch models.WorkPatch) (models.Work, error) {
	var work models.Work
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/trabajo/%d", id), patch, &work)
	return work, err
}

func (c *Client) DeleteWork(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/trabajo/%d", id), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.doJSON(ctx, http.MethodGet, "/categorias", nil, &categories)
	return categories, err
}

func (c *Client) ListImages(ctx context.Context, workID int64) ([]models.WorkImage, error) {
	var images []models.WorkImage
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/trabajo/%d/images", workID), nil, &images)
	return images, err
}

func (c *Client) DeleteImage(ctx context.Context, imageID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/trabajo/images/%d", imageID), nil, nil)
}

// ImageURL is the address this client reaches an image under. Listings
// carry the server's public form in WorkImage.URL.
func (c *Client) ImageURL(workID, imageID int64) string {
	return models.ImageURL(c.base.String(), workID, imageID)
}

// UploadImages sends local files in one multipart request. The server
// accepts at most ten per request; callers batch.
func (c *Client) UploadImages(ctx context.Context, workID int64, paths []string) ([]models.WorkImage, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range paths {
		if err := addFilePart(w, p); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var saved []models.WorkImage
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/trabajo/%d/images", workID), &body, w.FormDataContentType(), &saved)
	return saved, err
}

func addFilePart(w *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "images",
		"filename": filepath.Base(path),
	}))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}
