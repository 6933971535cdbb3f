// Package pagecache keeps anonymous page loads in badger so that repeated
// runs do not hit the site again.
package pagecache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"net/http"
	"net/url"
	"time"

	"tabun-api/lib/session"
	"tabun-api/lib/telemetry"
	"tabun-api/lib/timezone"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("tabun-api/lib/pagecache")

var errPageNotFound = badger.ErrKeyNotFound

type page struct {
	StatusCode int
	URL        string
	Header     http.Header
	Body       []byte

	ExpiresAt int64
}

// Transport serves anonymous GET requests from the cache and passes
// everything else, including requests carrying cookies, to the inner
// transport.
type Transport struct {
	inner session.Transport
	db    *badger.DB
	ttl   time.Duration
	tel   telemetry.API
}

func New(inner session.Transport, db *badger.DB, ttl time.Duration) Transport {
	return Transport{
		inner: inner,
		db:    db,
		ttl:   ttl,
		tel:   telemetry.NewScopedAPI("pagecache", telemetry.SlogAPI{}),
	}
}

func cacheable(req *session.Request) bool {
	return req.Method == http.MethodGet && len(req.Cookies) == 0
}

func key(endpoint string) (string, error) {
	full, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		full,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return "page:" + normalized, nil
}

func (t Transport) Do(ctx context.Context, req *session.Request) (*session.Response, error) {
	if !cacheable(req) {
		return t.inner.Do(ctx, req)
	}

	cached, err := t.get(ctx, req.URL)
	if err == nil {
		return &session.Response{
			StatusCode: cached.StatusCode,
			URL:        cached.URL,
			Header:     cached.Header,
			Body:       cached.Body,
		}, nil
	}
	if !errors.Is(err, errPageNotFound) {
		t.tel.ReportBroken("transport.get", err, req.URL)
	}

	res, err := t.inner.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return res, nil
	}
	err = t.set(ctx, req.URL, page{
		StatusCode: res.StatusCode,
		URL:        res.URL,
		Header:     res.Header,
		Body:       res.Body,
		ExpiresAt:  timezone.Now().Add(t.ttl).Unix(),
	})
	if err != nil {
		t.tel.ReportBroken("transport.set", err, req.URL)
	}
	return res, nil
}

func (t Transport) get(ctx context.Context, endpoint string) (page, error) {
	_, span := tracer.Start(ctx, "get")
	defer span.End()

	key, err := key(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return page{}, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	tx := t.db.NewTransaction(false)
	defer tx.Discard()
	item, err := tx.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return page{}, errPageNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return page{}, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return page{}, err
	}

	var cached page
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return page{}, err
	}

	if timezone.Now().Unix() >= cached.ExpiresAt {
		span.AddEvent("delete expired cache key", trace.WithAttributes(attribute.String("key", key)))
		err = t.db.Update(func(tx *badger.Txn) error {
			return tx.Delete([]byte(key))
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return page{}, errPageNotFound
	}

	span.AddEvent(
		"cache hit",
		trace.WithAttributes(attribute.Int("contentlength", len(cached.Body))),
	)
	return cached, nil
}

func (t Transport) set(ctx context.Context, endpoint string, p page) error {
	_, span := tracer.Start(ctx, "set")
	defer span.End()

	key, err := key(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize page")
		return err
	}

	err = t.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(key), serialized.Bytes())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return nil
}
