// Package client implements a session-aware HTTP client for the booking
// API.  It owns the access token, attaches it to outgoing requests,
// transparently refreshes it through the refresh-token cookie when the
// server answers 401, and retries transient 500s once.  Concurrent
// requests that hit 401 at the same time share a single in-flight
// refresh call instead of each racing their own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// State describes where the session currently is in its lifecycle.
type State int

const (
	StateNoToken    State = iota // no access token held; only public calls succeed
	StateHasToken                // access token held and presumed valid
	StateRefreshing              // a refresh call is in flight
	StateFailed                  // the last refresh cycle failed
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "NoToken"
	case StateHasToken:
		return "HasValidToken"
	case StateRefreshing:
		return "Refreshing"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

// ErrSessionExpired is returned when a 401 could not be recovered by
// refreshing: the refresh token is gone, expired or revoked and the user
// must log in again.
var ErrSessionExpired = errors.New("session expired, login required")

// publicPaths are endpoints that never need (or want) a bearer token.
var publicPaths = []string{"/login", "/register", "/admin-login", "/refresh-token"}

// refreshResult represents one refresh cycle.  Every caller that finds a
// cycle in flight waits on done and then reads err; the owner of the
// cycle writes err before closing done.
type refreshResult struct {
	done chan struct{}
	err  error
}

// Session is a client for the booking API that manages the access-token
// lifecycle.  The zero value is not usable; construct with New.  All
// methods are safe for concurrent use.
type Session struct {
	BaseURL string
	HTTP    *http.Client

	// RetryDelay is slept before the single retry of a 500 response.
	RetryDelay time.Duration
	// RefreshBackoff is slept before the second (and last) attempt when
	// the refresh call itself fails.
	RefreshBackoff time.Duration

	mu          sync.Mutex
	accessToken string
	state       State
	inflight    *refreshResult // non-nil while a refresh cycle runs
}

// New builds a Session for the given API base URL (e.g.
// "https://host/api").  The underlying http.Client carries a cookie jar
// so the HttpOnly refresh cookie set by login is replayed on refresh
// calls automatically.
func New(baseURL string) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		HTTP:           &http.Client{Jar: jar, Timeout: 30 * time.Second},
		RetryDelay:     time.Second,
		RefreshBackoff: 1500 * time.Millisecond,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the currently held access token ("" when none).
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// SetToken installs an access token obtained out of band (tests, or a
// token persisted from a previous run).
func (s *Session) SetToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = tok
	if tok == "" {
		s.state = StateNoToken
	} else {
		s.state = StateHasToken
	}
}

// AuthUser is the user object returned by the login endpoints.
type AuthUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

type loginResponse struct {
	AccessToken string   `json:"accessToken"`
	User        AuthUser `json:"user"`
}

// Login authenticates against POST /login and stores the access token.
// The refresh cookie lands in the client's jar as a side effect.
func (s *Session) Login(ctx context.Context, username, password string) (*AuthUser, error) {
	return s.login(ctx, "/login", username, password)
}

// AdminLogin authenticates against POST /admin-login.  The server
// rejects non-admin accounts with 403.
func (s *Session) AdminLogin(ctx context.Context, username, password string) (*AuthUser, error) {
	return s.login(ctx, "/admin-login", username, password)
}

func (s *Session) login(ctx context.Context, path, username, password string) (*AuthUser, error) {
	resp, err := s.Do(ctx, http.MethodPost, path, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: %s", resp.Status)
	}
	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	s.SetToken(lr.AccessToken)
	return &lr.User, nil
}

// Logout calls POST /logout (revoking the refresh token server-side) and
// drops the local access token.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.Do(ctx, http.MethodPost, "/logout", nil)
	if err == nil {
		resp.Body.Close()
	}
	s.SetToken("")
	return err
}

// Do issues one API request with the full retry behavior: bearer token
// attachment, at most one 401-triggered refresh-and-retry, and at most
// one 500-triggered retry after RetryDelay.  The two retry budgets are
// independent flags per original request, so a request can consume both
// but never loop.  The caller owns the returned response body.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	retried401 := false
	retried500 := false
	for {
		resp, err := s.send(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !retried401 && !isRefreshPath(path):
			retried401 = true
			drain(resp)
			if err := s.refresh(ctx); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusInternalServerError && !retried500:
			// Treated as transient (cold start, dropped connection).
			// Exactly one retry to avoid amplification.
			retried500 = true
			drain(resp)
			if err := sleepCtx(ctx, s.RetryDelay); err != nil {
				return nil, err
			}
			continue
		}
		return resp, nil
	}
}

// DoJSON runs Do and decodes a JSON response body into out (which may be
// nil for fire-and-forget calls).  Non-2xx statuses become errors.
func (s *Session) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := s.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// send performs a single HTTP attempt, rebuilding the request so the
// body is fresh and the bearer header reflects the current token.
func (s *Session) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := s.Token(); tok != "" && !isPublicPath(path) {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return s.HTTP.Do(req)
}

// refresh obtains a new access token via the refresh cookie.  Concurrent
// callers coalesce: the first caller runs the refresh cycle, everyone
// else waits on it and shares its outcome.  A failed refresh call is
// retried once after RefreshBackoff before the cycle gives up, clears
// the token and reports ErrSessionExpired.
func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	if cur := s.inflight; cur != nil {
		s.mu.Unlock()
		select {
		case <-cur.done:
			return cur.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	cycle := &refreshResult{done: make(chan struct{})}
	s.inflight = cycle
	s.state = StateRefreshing
	s.mu.Unlock()

	err := s.callRefresh(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		if serr := sleepCtx(ctx, s.RefreshBackoff); serr == nil {
			err = s.callRefresh(ctx)
		}
	}

	s.mu.Lock()
	if err != nil {
		s.accessToken = ""
		s.state = StateNoToken
		cycle.err = fmt.Errorf("%w: %v", ErrSessionExpired, err)
	} else {
		s.state = StateHasToken
	}
	s.inflight = nil
	s.mu.Unlock()
	close(cycle.done)
	return cycle.err
}

// callRefresh performs one POST /refresh-token attempt.  No bearer token
// is attached; the cookie jar supplies the refresh cookie.
func (s *Session) callRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/refresh-token", nil)
	if err != nil {
		return err
	}
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected: %s", resp.Status)
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errors.New("refresh response missing access token")
	}
	s.mu.Lock()
	s.accessToken = out.AccessToken
	s.mu.Unlock()
	return nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func isRefreshPath(path string) bool { return strings.HasSuffix(path, "/refresh-token") }

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
