package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
)

// Codes of transport errors that did not come with an HTTP status.
const (
	CodeTimeout   = -20
	CodeIO        = -30
	CodeHTTP      = -40
	CodeURL       = -50
	CodeStatic404 = -404
)

// ErrNotLoggedIn is returned before any request is made by operations that
// need a session id and an anti-forgery key the client does not have.
var ErrNotLoggedIn = errors.New("not logged in")

// TransportError is a failed exchange: the network failed, the site
// answered with an error status or with an envelope that does not decode.
// Code is one of the Code* constants or the HTTP status.
type TransportError struct {
	Code int
	URL  string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: code %d", e.URL, e.Code)
	}
	return fmt.Sprintf("%s: code %d: %s", e.URL, e.Code, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResultError is a failure the site reported itself, Message is what it
// would show to a user.
type ResultError struct {
	Message string
	Data    map[string]any
}

func (e *ResultError) Error() string {
	return "site error: " + e.Message
}

// classify maps a low level error of the http stack to an error code.
func classify(err error) int {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return CodeTimeout
	}
	var dnsErr *net.DNSError
	var opErr *net.OpError
	var parseErr *url.Error
	switch {
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		return CodeURL
	case errors.As(err, &parseErr) && parseErr.Op == "parse":
		return CodeURL
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return CodeIO
	}
	return CodeHTTP
}

var layoutMarker = []byte(`<div id="content"`)

// isStatic404 tells the bare 404 page of the web server apart from the
// site's own "not found" page, which is rendered inside the layout.
func isStatic404(status int, body []byte) bool {
	return status == 404 && !bytes.Contains(body, layoutMarker)
}
