package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type handler func(req *Request) (*Response, error)

// fakeTransport answers requests by method and path.
type fakeTransport struct {
	mutex    sync.Mutex
	routes   map[string]handler
	requests []*Request
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{routes: map[string]handler{}}
}

func (f *fakeTransport) handle(method, path string, h handler) {
	f.routes[method+" "+path] = h
}

func (f *fakeTransport) page(method, path string, body []byte) {
	f.handle(method, path, func(req *Request) (*Response, error) {
		return &Response{StatusCode: http.StatusOK, URL: req.URL, Body: body}, nil
	})
}

func (f *fakeTransport) Do(_ context.Context, req *Request) (*Response, error) {
	f.mutex.Lock()
	f.requests = append(f.requests, req)
	f.mutex.Unlock()

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	h, ok := f.routes[req.Method+" "+u.Path]
	if !ok {
		return &Response{StatusCode: http.StatusNotFound, URL: req.URL, Body: []byte("<html><body>Not Found</body></html>")}, nil
	}
	return h(req)
}

func (f *fakeTransport) last() *Request {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeTransport) count() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.requests)
}

func fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newClient(t testing.TB, transport Transport, opts Options) *Client {
	t.Helper()
	opts.Transport = transport
	client, err := New(opts)
	require.NoError(t, err)
	return client
}

func loggedIn() Options {
	return Options{SessionID: "session", SecurityKey: "token", Username: "Viewer"}
}

const indexKey = "0123456789abcdef0123456789abcdef"

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "/relative", Transport: newFakeTransport()})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, CodeURL, terr.Code)
}

func TestGetPostsHarvestsTokens(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodGet, "/index/", fixture(t, "index.html"))
	client := newClient(t, transport, Options{})

	posts, err := client.GetPosts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, 1001, posts[0].PostID)
	require.Equal(t, 1002, posts[1].PostID)

	tokens := client.Tokens()
	require.Equal(t, indexKey, tokens.SecurityKey)
	require.Equal(t, "Viewer", tokens.Username)
	require.Equal(t, "https://tabun.everypony.ru/index/", transport.last().URL)
}

func TestCheckLogin(t *testing.T) {
	transport := newFakeTransport()
	client := newClient(t, transport, Options{SecurityKey: "token"})

	require.ErrorIs(t, client.CheckLogin(), ErrNotLoggedIn)
	_, err := client.Vote(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	_, _, err = client.GetTalk(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	require.Zero(t, transport.count())

	require.NoError(t, newClient(t, transport, loggedIn()).CheckLogin())
}

func TestRequestErrors(t *testing.T) {
	transport := newFakeTransport()
	transport.handle(http.MethodGet, "/missing/", func(req *Request) (*Response, error) {
		return &Response{StatusCode: 404, URL: req.URL, Body: []byte(`<html><div id="content">Нет такой страницы</div></html>`)}, nil
	})
	transport.handle(http.MethodGet, "/broken/", func(req *Request) (*Response, error) {
		return &Response{StatusCode: 502, URL: req.URL}, nil
	})
	timeout := &TransportError{Code: CodeTimeout, URL: "x", Err: context.DeadlineExceeded}
	transport.handle(http.MethodGet, "/slow/", func(*Request) (*Response, error) {
		return nil, timeout
	})
	client := newClient(t, transport, Options{})

	testCases := []struct {
		path string
		code int
	}{
		{path: "/nowhere/", code: CodeStatic404},
		{path: "/missing/", code: 404},
		{path: "/broken/", code: 502},
		{path: "/slow/", code: CodeTimeout},
		{path: "%zz", code: CodeURL},
	}
	for _, test := range testCases {
		t.Run(test.path, func(t *testing.T) {
			_, err := client.Get(context.Background(), test.path)
			var terr *TransportError
			require.ErrorAs(t, err, &terr)
			require.Equal(t, test.code, terr.Code)
		})
	}
}

func TestCookiesUpdateTokens(t *testing.T) {
	transport := newFakeTransport()
	transport.handle(http.MethodGet, "/", func(req *Request) (*Response, error) {
		return &Response{
			StatusCode: http.StatusOK,
			URL:        req.URL,
			Cookies: []*http.Cookie{
				{Name: "SESS", Value: "fresh"},
				{Name: keyCookie, Value: "remember"},
				{Name: legacyTokenCookie, Value: "legacy"},
			},
		}, nil
	})
	client := newClient(t, transport, Options{SessionCookie: "SESS"})

	_, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	require.Equal(t, Tokens{SessionID: "fresh", SecurityKey: "legacy", Key: "remember"}, client.Tokens())

	_, err = client.Get(context.Background(), "/")
	require.NoError(t, err)
	sent := map[string]string{}
	for _, cookie := range transport.last().Cookies {
		sent[cookie.Name] = cookie.Value
	}
	require.Equal(t, map[string]string{"SESS": "fresh", keyCookie: "remember"}, sent)
}

func TestLegacyCookieDoesNotReplaceKey(t *testing.T) {
	transport := newFakeTransport()
	transport.handle(http.MethodGet, "/", func(req *Request) (*Response, error) {
		return &Response{
			StatusCode: http.StatusOK,
			URL:        req.URL,
			Cookies:    []*http.Cookie{{Name: legacyTokenCookie, Value: "legacy"}},
		}, nil
	})
	client := newClient(t, transport, loggedIn())

	_, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	require.Equal(t, "token", client.Tokens().SecurityKey)
}

func TestAjax(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodPost, "/ajax/ok/", []byte(`{"bStateError":false,"iValue":7}`))
	transport.page(http.MethodPost, "/ajax/fail/", []byte(`{"bStateError":true,"sMsg":"Слишком часто","sMsgTitle":"Ошибка"}`))
	transport.page(http.MethodPost, "/ajax/garbage/", []byte(`<html>oops</html>`))
	client := newClient(t, transport, loggedIn())

	var out struct {
		Value int `json:"iValue"`
	}
	err := client.Ajax(context.Background(), "/ajax/ok/", url.Values{"a": {"b"}}, &out)
	require.NoError(t, err)
	require.Equal(t, 7, out.Value)

	req := transport.last()
	require.Equal(t, "token", req.Form.Get(tokenField))
	require.Equal(t, "b", req.Form.Get("a"))
	require.Equal(t, "XMLHttpRequest", req.Header.Get("X-Requested-With"))

	err = client.Ajax(context.Background(), "/ajax/fail/", nil, nil)
	var rerr *ResultError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "Слишком часто", rerr.Message)
	require.Equal(t, "Ошибка", rerr.Data["sMsgTitle"])

	err = client.Ajax(context.Background(), "/ajax/garbage/", nil, nil)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, CodeHTTP, terr.Code)
	require.False(t, errors.As(err, &rerr))
}

func TestLogin(t *testing.T) {
	transport := newFakeTransport()
	index := fixture(t, "index.html")
	transport.page(http.MethodGet, "/", index)
	transport.handle(http.MethodPost, "/login/ajax-login", func(req *Request) (*Response, error) {
		return &Response{
			StatusCode: http.StatusOK,
			URL:        req.URL,
			Cookies: []*http.Cookie{
				{Name: DefaultSessionCookie, Value: "session"},
				{Name: keyCookie, Value: "remember"},
			},
			Body: []byte(`{"bStateError":false}`),
		}, nil
	})
	client := newClient(t, transport, Options{})

	err := client.Login(context.Background(), "viewer", "secret", true)
	require.NoError(t, err)
	require.Equal(t, Tokens{
		SessionID:   "session",
		SecurityKey: indexKey,
		Key:         "remember",
		Username:    "Viewer",
	}, client.Tokens())
	require.NoError(t, client.CheckLogin())

	var login *Request
	for _, req := range transport.requests {
		if req.Method == http.MethodPost {
			login = req
		}
	}
	require.NotNil(t, login)
	require.Equal(t, "viewer", login.Form.Get("login"))
	require.Equal(t, "secret", login.Form.Get("password"))
	require.Equal(t, "on", login.Form.Get("remember"))
	require.Equal(t, indexKey, login.Form.Get(tokenField))
}

func TestLoginRejected(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodPost, "/login/ajax-login", []byte(`{"bStateError":true,"sMsg":"Неправильно указаны логин или пароль"}`))
	client := newClient(t, transport, Options{SecurityKey: "token"})

	err := client.Login(context.Background(), "viewer", "wrong", false)
	var rerr *ResultError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "Неправильно указаны логин или пароль", rerr.Message)
	require.Equal(t, 1, transport.count())
}

func TestUpdateSecurityKeyMissing(t *testing.T) {
	transport := newFakeTransport()
	transport.page(http.MethodGet, "/", []byte(`<html><body><div id="content">nothing</div></body></html>`))
	client := newClient(t, transport, Options{})

	require.ErrorIs(t, client.UpdateSecurityKey(context.Background()), ErrNoSecurityKey)
}
