// Package client is a Go client for the attendance API that authenticates
// with the bearer token kept in a TokenStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
)

const (
	BaseURLEnv     = "ATTENDANCE_API_URL"
	DefaultBaseURL = "http://localhost:2000/api"
)

// BaseURLFromEnv returns ATTENDANCE_API_URL, or DefaultBaseURL when unset.
func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv(BaseURLEnv)); v != "" {
		return strings.TrimRight(v, "/")
	}
	return DefaultBaseURL
}

// APIError is a non-2xx answer carrying the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type Client struct {
	baseURL    string
	store      TokenStore
	httpClient *http.Client
}

// New returns a client for baseURL. An empty baseURL means BaseURLFromEnv and
// a nil store means an in-memory one.
func New(baseURL string, store TokenStore) *Client {
	if baseURL == "" {
		baseURL = BaseURLFromEnv()
	}
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &BearerTransport{Store: store},
		},
	}
}

func (c *Client) Store() TokenStore {
	return c.store
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in interface{}, out interface{}) error {
	if in == nil {
		return c.do(ctx, method, path, "", nil, out)
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(raw), out)
}

// Login authenticates with an employee id or email and stores the token.
func (c *Client) Login(ctx context.Context, identifier, password string) (auth.TokenResponse, error) {
	req := auth.LoginRequest{Password: password}
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	} else {
		req.EmpID = identifier
	}

	var token auth.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &token); err != nil {
		return auth.TokenResponse{}, err
	}
	if err := c.store.SetToken(token.AccessToken); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Logout revokes the token on the server and clears it locally. The local
// token is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.store.Clear(); clearErr != nil {
		return fmt.Errorf("failed to clear token: %w", clearErr)
	}
	return err
}

func (c *Client) Me(ctx context.Context) (employee.EmployeeResponse, error) {
	var me employee.EmployeeResponse
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &me)
	return me, err
}

// CheckIn posts the multipart check-in form. photo may be nil.
func (c *Client) CheckIn(ctx context.Context, note string, photo io.Reader, photoName string) (attendance.AttendanceResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if note != "" {
		if err := mw.WriteField("note", note); err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}
	if photo != nil {
		part, err := mw.CreateFormFile("photo", filepath.Base(photoName))
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		if _, err := io.Copy(part, photo); err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var result attendance.AttendanceResponse
	err := c.do(ctx, http.MethodPost, "/attendance/check-in", mw.FormDataContentType(), &body, &result)
	return result, err
}

func (c *Client) CheckOut(ctx context.Context) (attendance.AttendanceResponse, error) {
	var result attendance.AttendanceResponse
	err := c.doJSON(ctx, http.MethodPost, "/attendance/check-out", nil, &result)
	return result, err
}

func (c *Client) ApplyLeave(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	var result leave.LeaveRequestResponse
	err := c.doJSON(ctx, http.MethodPost, "/leave", req, &result)
	return result, err
}

// MyLeaves lists the caller's leave requests; page and limit of 0 use the server defaults.
func (c *Client) MyLeaves(ctx context.Context, page, limit int) (leave.ListLeaveRequestResponse, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/leave/me"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result leave.ListLeaveRequestResponse
	err := c.doJSON(ctx, http.MethodGet, path, nil, &result)
	return result, err
}
