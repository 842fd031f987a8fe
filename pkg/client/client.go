// Package client is a Go client for the Pulse HTTP API.
//
// Authentication state lives in a Session value returned by Signup and
// Login. Calls that need a user take the session explicitly, so one Client
// can act for many users at once.
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
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/pulse-social/backend/internal/models"
)

// Session is an authenticated user. The zero value is logged out.
type Session struct {
	Token string
	User  models.UserView
}

// Active reports whether the session holds a token
func (s *Session) Active() bool {
	return s != nil && s.Token != ""
}

// File is an upload for a multipart image field
type File struct {
	Name string
	Body io.Reader
}

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string `json:"message"`
	Detail  string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// ErrNoSession is returned when an authenticated call gets a logged-out session
var ErrNoSession = &APIError{Status: http.StatusUnauthorized, Message: "No token, authorization denied"}

type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:5000
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/") + "/api", http: httpClient}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   io.Reader
	ctype  string
	token  string
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return err
	}
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func jsonRequest(method, path string, payload interface{}) (request, error) {
	r := request{method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return r, err
		}
		r.body, r.ctype = bytes.NewReader(data), "application/json"
	}
	return r, nil
}

// multipartRequest encodes fields, skipping empty values, and at most one file
func multipartRequest(method, path string, fields map[string]string, fileField string, file *File) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return request{}, err
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, file.Name)
		if err != nil {
			return request{}, err
		}
		if _, err := io.Copy(part, file.Body); err != nil {
			return request{}, err
		}
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}
	return request{method: method, path: path, body: &buf, ctype: w.FormDataContentType()}, nil
}

func (c *Client) authed(ctx context.Context, s *Session, r request, out interface{}) error {
	if !s.Active() {
		return ErrNoSession
	}
	r.token = s.Token
	return c.do(ctx, r, out)
}

func (c *Client) session(ctx context.Context, r request) (*Session, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// Signup registers an account and returns its session. picture may be nil.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest, picture *File) (*Session, error) {
	r, err := multipartRequest(http.MethodPost, "/auth/signup", map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}, "profilePicture", picture)
	if err != nil {
		return nil, err
	}
	return c.session(ctx, r)
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	r, err := jsonRequest(http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.session(ctx, r)
}

func (c *Client) FirebaseLogin(ctx context.Context, idToken string) (*Session, error) {
	r, err := jsonRequest(http.MethodPost, "/auth/firebase-login", models.FirebaseLoginRequest{IDToken: idToken})
	if err != nil {
		return nil, err
	}
	return c.session(ctx, r)
}

// Logout revokes the session's token on the server and clears it locally
func (c *Client) Logout(ctx context.Context, s *Session) error {
	if err := c.authed(ctx, s, request{method: http.MethodPost, path: "/auth/logout"}, nil); err != nil {
		return err
	}
	*s = Session{}
	return nil
}

// Feed returns one page of the feed. order is "", "liked", "commented" or "shared".
func (c *Client) Feed(ctx context.Context, order string, page, limit int) (*models.FeedPage, error) {
	path := "/post/feed"
	if order != "" && order != "recent" {
		path += "/" + order
	}
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out models.FeedPage
	if err := c.do(ctx, request{method: http.MethodGet, path: path, query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, request{method: http.MethodGet, path: "/post/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost publishes text, an image or both. image may be nil.
func (c *Client) CreatePost(ctx context.Context, s *Session, content string, image *File) (*models.Post, error) {
	r, err := multipartRequest(http.MethodPost, "/post/create", map[string]string{"content": content}, "image", image)
	if err != nil {
		return nil, err
	}
	var out models.Post
	if err := c.authed(ctx, s, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, s *Session, id string) error {
	return c.authed(ctx, s, request{method: http.MethodDelete, path: "/post/" + url.PathEscape(id)}, nil)
}

func (c *Client) postAction(ctx context.Context, s *Session, id, action string, payload interface{}) (*models.Post, error) {
	r, err := jsonRequest(http.MethodPost, "/post/"+url.PathEscape(id)+"/"+action, payload)
	if err != nil {
		return nil, err
	}
	var out models.Post
	if err := c.authed(ctx, s, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Like(ctx context.Context, s *Session, id string) (*models.Post, error) {
	return c.postAction(ctx, s, id, "like", nil)
}

func (c *Client) Unlike(ctx context.Context, s *Session, id string) (*models.Post, error) {
	return c.postAction(ctx, s, id, "unlike", nil)
}

func (c *Client) Comment(ctx context.Context, s *Session, id, text string) (*models.Post, error) {
	return c.postAction(ctx, s, id, "comment", models.CommentRequest{Text: text})
}

func (c *Client) Share(ctx context.Context, s *Session, id string) (*models.Post, error) {
	return c.postAction(ctx, s, id, "share", nil)
}

func (c *Client) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user/profile/" + url.PathEscape(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the non-empty fields. picture may be nil.
func (c *Client) UpdateProfile(ctx context.Context, s *Session, req models.UpdateProfileRequest, picture *File) (*models.UserView, error) {
	r, err := multipartRequest(http.MethodPut, "/user/profile", map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"bio":      req.Bio,
		"password": req.Password,
	}, "profilePicture", picture)
	if err != nil {
		return nil, err
	}
	var out models.UserView
	if err := c.authed(ctx, s, r, &out); err != nil {
		return nil, err
	}
	s.User = out
	return &out, nil
}

func (c *Client) Follow(ctx context.Context, s *Session, userID string) error {
	return c.authed(ctx, s, request{method: http.MethodPost, path: "/user/follow/" + url.PathEscape(userID)}, nil)
}

func (c *Client) Unfollow(ctx context.Context, s *Session, userID string) error {
	return c.authed(ctx, s, request{method: http.MethodPost, path: "/user/unfollow/" + url.PathEscape(userID)}, nil)
}

func (c *Client) Search(ctx context.Context, q string) (*models.SearchResult, error) {
	var out models.SearchResult
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user/search", query: url.Values{"q": {q}}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Notifications(ctx context.Context, s *Session, page, limit int) (*models.NotificationPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out models.NotificationPage
	if err := c.authed(ctx, s, request{method: http.MethodGet, path: "/notifications", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnreadCount(ctx context.Context, s *Session) (int64, error) {
	var out struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	if err := c.authed(ctx, s, request{method: http.MethodGet, path: "/notifications/unread-count"}, &out); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, s *Session, id uint) error {
	path := "/notifications/" + strconv.FormatUint(uint64(id), 10) + "/read"
	return c.authed(ctx, s, request{method: http.MethodPut, path: path}, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, s *Session) error {
	return c.authed(ctx, s, request{method: http.MethodPut, path: "/notifications/read-all"}, nil)
}
