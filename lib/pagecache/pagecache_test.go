package pagecache

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"tabun-api/lib/session"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls  atomic.Int64
	status int
}

func (c *countingTransport) Do(_ context.Context, req *session.Request) (*session.Response, error) {
	n := c.calls.Add(1)
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	return &session.Response{
		StatusCode: status,
		URL:        req.URL,
		Body:       []byte{byte('0' + n)},
	}, nil
}

func openDB(t testing.TB) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func get(t testing.TB, transport session.Transport, req *session.Request) string {
	t.Helper()
	res, err := transport.Do(context.Background(), req)
	require.NoError(t, err)
	return string(res.Body)
}

func TestServesAnonymousGetsFromCache(t *testing.T) {
	inner := &countingTransport{}
	cache := New(inner, openDB(t), time.Hour)

	require.Equal(t, "1", get(t, cache, &session.Request{Method: http.MethodGet, URL: "https://tabun.everypony.ru/index/?b=2&a=1"}))
	require.Equal(t, "1", get(t, cache, &session.Request{Method: http.MethodGet, URL: "https://TABUN.everypony.ru/index/?a=1&b=2#top"}))
	require.EqualValues(t, 1, inner.calls.Load())
}

func TestPassesThrough(t *testing.T) {
	testCases := []struct {
		name string
		req  *session.Request
	}{
		{
			name: "post",
			req:  &session.Request{Method: http.MethodPost, URL: "https://tabun.everypony.ru/ajax/"},
		},
		{
			name: "authenticated get",
			req: &session.Request{
				Method:  http.MethodGet,
				URL:     "https://tabun.everypony.ru/talk/",
				Cookies: []*http.Cookie{{Name: "TABUNSESSIONID", Value: "s"}},
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			inner := &countingTransport{}
			cache := New(inner, openDB(t), time.Hour)
			require.Equal(t, "1", get(t, cache, test.req))
			require.Equal(t, "2", get(t, cache, test.req))
		})
	}
}

func TestExpiredEntriesAreRefetched(t *testing.T) {
	inner := &countingTransport{}
	cache := New(inner, openDB(t), -time.Minute)
	req := &session.Request{Method: http.MethodGet, URL: "https://tabun.everypony.ru/"}

	require.Equal(t, "1", get(t, cache, req))
	require.Equal(t, "2", get(t, cache, req))
}

func TestExpiredEntriesAreDeleted(t *testing.T) {
	db := openDB(t)
	cache := New(&countingTransport{}, db, time.Hour)
	endpoint := "https://tabun.everypony.ru/blog/news/"

	require.NoError(t, cache.set(context.Background(), endpoint, page{StatusCode: http.StatusOK, ExpiresAt: 0}))
	_, err := cache.get(context.Background(), endpoint)
	require.ErrorIs(t, err, errPageNotFound)

	k, err := key(endpoint)
	require.NoError(t, err)
	err = db.View(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(k))
		return err
	})
	require.ErrorIs(t, err, badger.ErrKeyNotFound)
}

func TestErrorStatusIsNotCached(t *testing.T) {
	inner := &countingTransport{status: http.StatusNotFound}
	cache := New(inner, openDB(t), time.Hour)
	req := &session.Request{Method: http.MethodGet, URL: "https://tabun.everypony.ru/blog/x/"}

	require.Equal(t, "1", get(t, cache, req))
	require.Equal(t, "2", get(t, cache, req))
}

func TestWorksUnderClient(t *testing.T) {
	inner := &countingTransport{}
	client, err := session.New(session.Options{Transport: New(inner, openDB(t), time.Hour)})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res, err := client.Get(context.Background(), "/index/")
		require.NoError(t, err)
		require.Equal(t, "1", string(res.Body))
	}
}
