package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/notes-api/internal/models"
)

// ==========================
// Client
// ==========================

// Client is a typed caller for the notes API. Token, when set, is sent as a
// bearer credential on every request.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// NoteInput is the writable part of a note.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags,omitempty"`
}

// ==========================
// Auth
// ==========================
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ==========================
// Notes
// ==========================

// ListNotes returns the caller's notes, newest first. An empty query lists everything.
func (c *Client) ListNotes(ctx context.Context, query string) ([]models.Note, error) {
	path := "/api/notes"
	if query != "" {
		path += "?" + url.Values{"q": {query}}.Encode()
	}
	var out struct {
		Notes []models.Note `json:"notes"`
		Count int           `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (c *Client) GetNote(ctx context.Context, id int) (*models.Note, error) {
	var out struct {
		Note models.Note `json:"note"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

func (c *Client) CreateNote(ctx context.Context, in NoteInput) (*models.Note, error) {
	var out struct {
		Note models.Note `json:"note"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/notes", in, &out); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id int, in NoteInput) (*models.Note, error) {
	var out struct {
		Note models.Note `json:"note"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+strconv.Itoa(id), in, &out); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+strconv.Itoa(id), nil, nil)
}

// ==========================
// Account
// ==========================
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPut, "/api/user/password", body, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodDelete, "/api/user/account", map[string]string{"password": password}, nil)
}

// Activity returns one page of the caller's activity log. Zero limit uses the server default.
func (c *Client) Activity(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/user/activity"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Items []models.AuditEntry `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
