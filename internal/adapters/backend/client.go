// Package backend is the HTTP client for the code-submission backend.
//
// Every JSON endpoint answers {"success": bool, "message": string, ...}, with
// HTTP 200 even on failure. A decoded success=false becomes *domain.APIError;
// anything else that goes wrong (dial errors, bad status with a non-JSON
// body, malformed JSON) is returned as a wrapped transport error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/csg33k/code-portal/internal/domain"
)

// Client talks to one backend. The session cookie lives in its cookie jar.
type Client struct {
	base *url.URL
	http *http.Client
	jar  *sessionJar
}

// sessionJar is a cookie jar that can be emptied on logout.
type sessionJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &sessionJar{inner: inner}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *sessionJar) reset() {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
}

type envelope struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Submissions []domain.Submission `json:"submissions"`
}

// New returns a client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	jar, err := newSessionJar()
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base: u,
		http: &http.Client{Jar: jar, Timeout: timeout},
		jar:  jar,
	}, nil
}

// BaseURL returns the backend address the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(elem ...string) string {
	return c.base.JoinPath(elem...).String()
}

// Submit uploads one file as multipart fields "file" and "project_name".
func (c *Client) Submit(ctx context.Context, u domain.Upload) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", u.Filename)
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return fmt.Errorf("read %s: %w", u.Filename, err)
	}
	if err := mw.WriteField("project_name", u.ProjectName); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("api", "submit"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, err = c.doJSON(req)
	return err
}

// ListSubmissions returns the submissions in backend order.
func (c *Client) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("api", "submissions"), nil)
	if err != nil {
		return nil, err
	}
	env, err := c.doJSON(req)
	if err != nil {
		return nil, err
	}
	if env.Submissions == nil {
		return []domain.Submission{}, nil
	}
	return env.Submissions, nil
}

// Download opens the file stream of a submission. The backend reports
// failures as a JSON envelope instead of a file; a reply carrying an
// attachment disposition is always the file, whatever its content type.
func (c *Client) Download(ctx context.Context, id int64) (*domain.Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("api", "download", strconv.FormatInt(id, 10)), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", req.URL.Path, err)
	}

	contentType := resp.Header.Get("Content-Type")
	disposition := resp.Header.Get("Content-Disposition")
	if !isAttachment(disposition) && isJSON(contentType) {
		defer resp.Body.Close()
		_, err := decodeEnvelope(resp)
		if err == nil {
			return nil, fmt.Errorf("GET %s: expected a file, got a JSON reply", req.URL.Path)
		}
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", req.URL.Path, resp.StatusCode)
	}

	return &domain.Download{
		Filename:    attachmentName(disposition, id),
		ContentType: contentType,
		Body:        resp.Body,
	}, nil
}

// Logout ends the server session and forgets the local cookie. It returns
// the final URL when the backend redirected, "" otherwise.
func (c *Client) Logout(ctx context.Context) (string, error) {
	target := c.endpoint("logout")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET /logout: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.jar.reset()

	final := resp.Request.URL.String()
	if final == target {
		return "", nil
	}
	return final, nil
}

// Login posts the credentials form; the session cookie is kept for later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("login"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = c.doJSON(req)
	return err
}

// EditorURL builds /editor/{id}?mode=view|edit on the backend host.
func (c *Client) EditorURL(id int64, mode domain.EditorMode) string {
	u := c.base.JoinPath("editor", strconv.FormatInt(id, 10))
	u.RawQuery = url.Values{"mode": {string(mode)}}.Encode()
	return u.String()
}

func (c *Client) doJSON(req *http.Request) (*envelope, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return env, nil
}

// decodeEnvelope reads a JSON envelope and turns success=false into *domain.APIError.
func decodeEnvelope(resp *http.Response) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, &domain.APIError{Message: msg}
	}
	return &env, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func isAttachment(disposition string) bool {
	mt, _, err := mime.ParseMediaType(disposition)
	return err == nil && mt == "attachment"
}

// attachmentName extracts the filename parameter of a Content-Disposition
// header, falling back to submission-<id>.
func attachmentName(disposition string, id int64) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	return "submission-" + strconv.FormatInt(id, 10)
}
