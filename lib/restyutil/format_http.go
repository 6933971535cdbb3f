package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// formatHeaders renders headers one "Key: Value" per line, sorted by key.
func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

const redacted = "<redacted>"

// Form fields that carry credentials or session tokens.
var secretFields = []string{"password", "security_ls_key"}

// redactCookies blanks the values of a Cookie header, or of the first pair
// of a Set-Cookie header when only is 1.
func redactCookies(line string, only int) string {
	parts := strings.Split(line, ";")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		name, _, ok := strings.Cut(part, "=")
		if ok && (only <= 0 || i < only) {
			part = name + "=" + redacted
		}
		parts[i] = part
	}
	return strings.Join(parts, "; ")
}

func redactHeaders(headers http.Header) http.Header {
	out := headers.Clone()
	for i, v := range out["Cookie"] {
		out["Cookie"][i] = redactCookies(v, 0)
	}
	for i, v := range out["Set-Cookie"] {
		out["Set-Cookie"][i] = redactCookies(v, 1)
	}
	return out
}

func redactForm(contentType, body string) string {
	if !strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return body
	}
	form, err := url.ParseQuery(body)
	if err != nil {
		return body
	}
	changed := false
	for _, field := range secretFields {
		if form.Has(field) {
			form.Set(field, redacted)
			changed = true
		}
	}
	if !changed {
		return body
	}
	return form.Encode()
}

func formatRequestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return redactForm(req.Header.Get("Content-Type"), string(readBody))
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url, the redirect target when there is one
// 7: response headers in ("Key: Value" format)
// 8: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func formatExchange(res *resty.Response) string {
	requestHeaders := ""
	requestBody := ""
	if res.Request.RawRequest != nil {
		requestHeaders = formatHeaders(redactHeaders(res.Request.RawRequest.Header))
		requestBody = formatRequestBody(res.Request.RawRequest)
	}

	responseURL := res.Request.URL
	if res.RawResponse != nil {
		redirected, err := res.RawResponse.Location()
		if err == nil {
			responseURL = redirected.String()
		}
	}

	return fmt.Sprintf(
		exchangeTemplate,

		res.Request.Method, res.Request.URL,
		requestHeaders,
		requestBody,

		strconv.Itoa(res.StatusCode()), responseURL,
		formatHeaders(redactHeaders(res.Header())),
		res.String(),
	)
}
