package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"tabun-api/lib/restyutil"
	"tabun-api/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// Request is a single exchange with the site. Form and Body are exclusive,
// a non-nil Form is sent urlencoded.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Form    url.Values
	Body    []byte
	Cookies []*http.Cookie
}

type Response struct {
	StatusCode int
	// URL is where the response came from, redirects are not followed.
	URL     string
	Header  http.Header
	Cookies []*http.Cookie
	Body    []byte
}

// Transport performs requests for a Client. Implementations do not follow
// redirects and do not keep cookies, the Client owns both.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type TransportOptions struct {
	UserAgent        string
	Timeout          time.Duration
	CloudflareBypass bool
	Telemetry        telemetry.API
	// Dumps receives every exchange in http file format when set.
	Dumps restyutil.InstrumentOutput
}

type RestyTransport struct {
	http *resty.Client
}

func NewRestyTransport(opts TransportOptions) RestyTransport {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}

	client := resty.New()
	client.SetCookieJar(nil)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("session/http", opts.Telemetry))
	restyutil.InstrumentClient(client, tracer, opts.Dumps)

	return RestyTransport{http: client}
}

func (t RestyTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	r := t.http.R().SetContext(ctx)
	r.SetHeaderMultiValues(req.Header)
	r.SetCookies(req.Cookies)
	switch {
	case req.Form != nil:
		r.SetFormDataFromValues(req.Form)
	case req.Body != nil:
		r.SetBody(req.Body)
	}

	res, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, &TransportError{Code: classify(err), URL: req.URL, Err: err}
	}
	if res == nil || res.RawResponse == nil {
		return nil, &TransportError{Code: CodeHTTP, URL: req.URL, Err: errors.New("no response")}
	}

	location := req.URL
	if res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		location = res.RawResponse.Request.URL.String()
	}
	return &Response{
		StatusCode: res.StatusCode(),
		URL:        location,
		Header:     res.Header(),
		Cookies:    res.Cookies(),
		Body:       res.Body(),
	}, nil
}
