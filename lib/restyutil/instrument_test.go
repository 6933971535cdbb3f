package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex sync.Mutex
	dumps map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.dumps[id] = contents
}

func TestInstrumentClientDumpsExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong " + r.Method))
	}))
	defer server.Close()

	output := &memoryOutput{dumps: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, output)

	_, err := client.R().Get(server.URL + "/ping")
	require.NoError(t, err)
	_, err = client.R().SetFormData(map[string]string{"a": "b"}).Post(server.URL + "/form")
	require.NoError(t, err)

	require.Len(t, output.dumps, 2)
	get := output.dumps["1"]
	require.Contains(t, get, "GET "+server.URL+"/ping")
	require.Contains(t, get, "X-Test: yes")
	require.True(t, strings.HasSuffix(get, "pong GET"))

	post := output.dumps["2"]
	require.Contains(t, post, "a=b")
	require.Contains(t, post, "pong POST")
}

func TestInstrumentClientWithoutOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := resty.New()
	InstrumentClient(client, nil, nil)
	res, err := client.R().Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(t, "A: 1\nA: 2\nB: 3", formatHeaders(http.Header{
		"B": {"3"},
		"A": {"1", "2"},
	}))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.http"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "contents")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, "1.http"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(data))
}

func TestDumpsAreRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "TABUNSESSIONID", Value: "fresh", Path: "/"})
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	output := &memoryOutput{dumps: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, output)

	_, err := client.R().
		SetCookie(&http.Cookie{Name: "key", Value: "remember"}).
		SetFormData(map[string]string{"login": "pony", "password": "hunter2"}).
		Post(server.URL + "/login/ajax-login")
	require.NoError(t, err)

	dump := output.dumps["1"]
	require.Contains(t, dump, "login=pony")
	require.Contains(t, dump, "key="+redacted)
	require.Contains(t, dump, "TABUNSESSIONID="+redacted+"; Path=/")
	require.NotContains(t, dump, "hunter2")
	require.NotContains(t, dump, "remember")
	require.NotContains(t, dump, "fresh")
}

func TestRedactForm(t *testing.T) {
	const form = "application/x-www-form-urlencoded"
	require.Equal(t, "a=b", redactForm(form, "a=b"))
	require.Equal(t, "a=b&security_ls_key=%3Credacted%3E", redactForm(form, "security_ls_key=abc&a=b"))
	require.Equal(t, "password=x", redactForm("application/json", "password=x"))
}
