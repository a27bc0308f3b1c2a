package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"billed/internal/common"
	"billed/internal/domain/model"
)

// Client talks to the REST bills API of a remote server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginResponse struct {
	Token string `json:"jwt"`
}

// Login authenticates against /api/v1/auth/login and keeps the token for the
// following calls.
func (c *Client) Login(ctx context.Context, email, password string, userType model.UserType) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"type":     string(userType),
	})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "application/json", bytes.NewReader(body), &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) Bills() BillsAPI {
	return clientBills{c}
}

type clientBills struct{ c *Client }

func (b clientBills) List(ctx context.Context) ([]model.Bill, error) {
	var bills []model.Bill
	if err := b.c.do(ctx, http.MethodGet, "/api/v1/bills", "", nil, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (b clientBills) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if req.Email != "" {
		if err := mw.WriteField("email", req.Email); err != nil {
			return nil, fmt.Errorf("writing email field: %w", err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.File.Name))
	if req.File.ContentType != "" {
		header.Set("Content-Type", req.File.ContentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(req.File.Data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var resp CreateResponse
	if err := b.c.do(ctx, http.MethodPost, "/api/v1/bills", mw.FormDataContentType(), &buf, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b clientBills) Update(ctx context.Context, req UpdateRequest) (*model.Bill, error) {
	body, err := json.Marshal(req.Bill)
	if err != nil {
		return nil, fmt.Errorf("encoding bill: %w", err)
	}
	var bill model.Bill
	path := "/api/v1/bills/" + url.PathEscape(req.Selector)
	if err := b.c.do(ctx, http.MethodPatch, path, "application/json", bytes.NewReader(body), &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (b clientBills) Discard(ctx context.Context, selector string) error {
	path := "/api/v1/bills/" + url.PathEscape(selector)
	return b.c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.NewStoreError(http.StatusServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr common.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		var cause error
		if apiErr.Error != "" {
			cause = fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return common.NewStoreError(resp.StatusCode, cause)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
