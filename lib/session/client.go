// Package session talks to the site: it keeps the session cookies and the
// anti-forgery key, spaces requests out and maps every page or ajax answer
// to models through the parsers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tabun-api/lib/parsers"
	"tabun-api/lib/restyutil"
	"tabun-api/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("tabun-api/lib/session")

var meter = otel.Meter("tabun-api/lib/session")
var requestCounter, _ = meter.Int64Counter(
	"session.requests",
	metric.WithDescription("requests sent to the site"),
)

const (
	DefaultBaseURL       = "https://tabun.everypony.ru"
	DefaultSessionCookie = "TABUNSESSIONID"

	keyCookie         = "key"
	legacyTokenCookie = "LIVESTREET_SECURITY_KEY"
	tokenField        = "security_ls_key"
)

var ErrNoSecurityKey = errors.New("security key not found on page")

type Options struct {
	BaseURL string
	// SessionCookie is the name of the cookie holding SessionID.
	SessionCookie string
	SessionID     string
	SecurityKey   string
	Key           string
	Username      string

	UserAgent string
	Timeout   time.Duration
	// QueryInterval is the minimum time between two requests, zero for none.
	QueryInterval    time.Duration
	CloudflareBypass bool

	// Transport replaces the resty transport, UserAgent, Timeout,
	// CloudflareBypass and Dumps are then ignored.
	Transport Transport
	Telemetry telemetry.API
	Dumps     restyutil.InstrumentOutput
}

type Client struct {
	baseURL       *url.URL
	sessionCookie string
	transport     Transport
	tel           telemetry.API
	queue         *requestQueue

	mutex       sync.RWMutex
	sessionID   string
	securityKey string
	key         string
	username    string
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = DefaultSessionCookie
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, &TransportError{Code: CodeURL, URL: opts.BaseURL, Err: err}
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, &TransportError{Code: CodeURL, URL: opts.BaseURL, Err: errors.New("base url must be absolute")}
	}

	transport := opts.Transport
	if transport == nil {
		transport = NewRestyTransport(TransportOptions{
			UserAgent:        opts.UserAgent,
			Timeout:          opts.Timeout,
			CloudflareBypass: opts.CloudflareBypass,
			Telemetry:        opts.Telemetry,
			Dumps:            opts.Dumps,
		})
	}

	return &Client{
		baseURL:       baseURL,
		sessionCookie: opts.SessionCookie,
		transport:     transport,
		tel:           telemetry.NewScopedAPI("session", opts.Telemetry),
		queue:         newRequestQueue(opts.QueryInterval),
		sessionID:     opts.SessionID,
		securityKey:   opts.SecurityKey,
		key:           opts.Key,
		username:      opts.Username,
	}, nil
}

// Tokens is a snapshot of the authentication state of a Client.
type Tokens struct {
	SessionID   string
	SecurityKey string
	Key         string
	Username    string
}

func (c *Client) Tokens() Tokens {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return Tokens{
		SessionID:   c.sessionID,
		SecurityKey: c.securityKey,
		Key:         c.key,
		Username:    c.username,
	}
}

func (c *Client) SetQueryInterval(interval time.Duration) {
	c.queue.setInterval(interval)
}

// CheckLogin fails with ErrNotLoggedIn when the client cannot make
// authenticated requests. It never touches the network.
func (c *Client) CheckLogin() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.sessionID == "" || c.securityKey == "" {
		return ErrNotLoggedIn
	}
	return nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", &TransportError{Code: CodeURL, URL: path, Err: err}
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

func (c *Client) cookies() []*http.Cookie {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var cookies []*http.Cookie
	if c.sessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: c.sessionCookie, Value: c.sessionID})
	}
	if c.key != "" {
		cookies = append(cookies, &http.Cookie{Name: keyCookie, Value: c.key})
	}
	return cookies
}

func (c *Client) updateFromCookies(cookies []*http.Cookie) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, cookie := range cookies {
		switch cookie.Name {
		case c.sessionCookie:
			c.sessionID = cookie.Value
		case keyCookie:
			c.key = cookie.Value
		case legacyTokenCookie:
			if c.securityKey == "" {
				c.securityKey = cookie.Value
			}
		}
	}
}

// updateFromPage takes the anti-forgery key and the viewer out of a page.
func (c *Client) updateFromPage(pctx parsers.PageContext) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if pctx.SecurityKey != "" {
		c.securityKey = pctx.SecurityKey
	}
	if pctx.Username != "" {
		c.username = pctx.Username
	}
}

// Request sends one request with the session cookies after waiting for its
// turn in the queue. Responses with an error status are returned as
// *TransportError.
func (c *Client) Request(ctx context.Context, method, path string, form url.Values, header http.Header) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := c.queue.wait(ctx); err != nil {
		return nil, &TransportError{Code: classify(err), URL: target, Err: err}
	}

	requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
	res, err := c.transport.Do(ctx, &Request{
		Method:  method,
		URL:     target,
		Header:  header,
		Form:    form,
		Cookies: c.cookies(),
	})
	if err != nil {
		c.tel.ReportBroken("client.request", err, method, target)
		var terr *TransportError
		if !errors.As(err, &terr) {
			err = &TransportError{Code: classify(err), URL: target, Err: err}
		}
		return nil, err
	}
	c.updateFromCookies(res.Cookies)

	switch {
	case isStatic404(res.StatusCode, res.Body):
		return nil, &TransportError{Code: CodeStatic404, URL: target}
	case res.StatusCode >= 400:
		return nil, &TransportError{Code: res.StatusCode, URL: target}
	}
	return res, nil
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, nil)
}

func (c *Client) Post(ctx context.Context, path string, form url.Values) (*Response, error) {
	if form == nil {
		form = url.Values{}
	}
	return c.Request(ctx, http.MethodPost, path, form, nil)
}

// getPage fetches an html page and refreshes the tokens it carries.
func (c *Client) getPage(ctx context.Context, path string) ([]byte, parsers.PageContext, error) {
	res, err := c.Get(ctx, path)
	if err != nil {
		return nil, parsers.PageContext{}, err
	}
	pctx := parsers.ParsePageContext(res.Body, res.URL)
	c.updateFromPage(pctx)
	return res.Body, pctx, nil
}

type envelope struct {
	StateError bool   `json:"bStateError"`
	Message    string `json:"sMsg"`
	Title      string `json:"sMsgTitle"`
}

// Ajax posts fields with the anti-forgery key to an ajax endpoint and
// decodes the answer into out, which may be nil. A reported failure is
// returned as *ResultError.
func (c *Client) Ajax(ctx context.Context, path string, fields url.Values, out any) error {
	form := url.Values{}
	for k, v := range fields {
		form[k] = v
	}
	form.Set(tokenField, c.Tokens().SecurityKey)

	header := http.Header{}
	header.Set("X-Requested-With", "XMLHttpRequest")
	header.Set("Accept", "application/json, text/javascript, */*")

	res, err := c.Request(ctx, http.MethodPost, path, form, header)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return &TransportError{Code: CodeHTTP, URL: res.URL, Err: fmt.Errorf("decode ajax envelope: %w", err)}
	}
	if env.StateError {
		var data map[string]any
		_ = json.Unmarshal(res.Body, &data)
		message := env.Message
		if message == "" {
			message = env.Title
		}
		c.tel.ReportDebug("ajax error", path, message)
		return &ResultError{Message: message, Data: data}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return &TransportError{Code: CodeHTTP, URL: res.URL, Err: fmt.Errorf("decode ajax result: %w", err)}
	}
	return nil
}

// UpdateSecurityKey loads the index page to pick up a fresh anti-forgery
// key and the name of the logged in user.
func (c *Client) UpdateSecurityKey(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:UpdateSecurityKey")
	defer span.End()

	if _, _, err := c.getPage(ctx, "/"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch index")
		return err
	}
	if c.Tokens().SecurityKey == "" {
		span.SetStatus(codes.Error, ErrNoSecurityKey.Error())
		return ErrNoSecurityKey
	}
	return nil
}

// Login authenticates with a username and password. The site answers with
// the key cookie, the index page is then reloaded to pick up the rotated
// anti-forgery key and the canonical username.
func (c *Client) Login(ctx context.Context, login, password string, remember bool) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if c.Tokens().SecurityKey == "" {
		if err := c.UpdateSecurityKey(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "no security key before login")
			return err
		}
	}

	fields := url.Values{
		"login":       {login},
		"password":    {password},
		"return-path": {c.baseURL.String()},
	}
	if remember {
		fields.Set("remember", "on")
	}
	if err := c.Ajax(ctx, "/login/ajax-login", fields, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login rejected")
		return err
	}

	if err := c.UpdateSecurityKey(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to refresh after login")
		return err
	}
	if c.Tokens().Username == "" {
		c.mutex.Lock()
		c.username = login
		c.mutex.Unlock()
	}
	return nil
}
