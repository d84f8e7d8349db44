// Package query is a keyed, process wide cache of asynchronous fetches.
//
// Each read names a Key, a fetch function and Options. A disabled read never
// fetches. An enabled read serves cached data while it is fresh, and starts a
// fetch otherwise. At most one fetch per key is in flight at any time, and
// only a completed fetch writes the key's cached value. Failed fetches are
// retried with exponential backoff before the error is reported.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.vocdoni.io/explorer/log"
	"go.vocdoni.io/explorer/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheSize is the number of keys kept when Config.CacheSize is zero.
	DefaultCacheSize = 1024
	// DefaultRetries is the number of retries after a failed fetch.
	DefaultRetries = 3
	// DefaultRetryDelay is the delay before the first retry. Later retries
	// back off exponentially up to DefaultMaxRetryDelay.
	DefaultRetryDelay    = time.Second
	DefaultMaxRetryDelay = 30 * time.Second
	// DefaultErrorCooldown is how long a failed key is not fetched again.
	DefaultErrorCooldown = 5 * time.Second
)

// FetchFunc retrieves the value of a query. The context is cancelled when
// the Client is closed.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Options of a single query read.
type Options struct {
	// Enabled gates the query. A disabled query never fetches. Note that the
	// zero Options is disabled.
	Enabled bool
	// StaleTime is how long fetched data is served without fetching again.
	// Zero means data is stale as soon as it is fetched.
	StaleTime time.Duration
}

// Config holds the Client settings. Zero values select the defaults.
type Config struct {
	CacheSize int
	// Retries after a failed fetch. Negative disables retrying.
	Retries       int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	// ErrorCooldown is the minimum time before a failed key is fetched
	// again, unless it is invalidated.
	ErrorCooldown time.Duration
	// StaleTime applies to the reads whose Options leave StaleTime at zero.
	// Zero keeps them always stale.
	StaleTime time.Duration
	// Now is the clock used for staleness. Defaults to time.Now.
	Now func() time.Time
}

// Client is the query cache. It is safe for concurrent use.
type Client struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *entry]
	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	retries       int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	errorCooldown time.Duration
	staleTime     time.Duration
	now           func() time.Time
}

type entry struct {
	mu          sync.Mutex
	data        any
	hasData     bool
	err         error
	settledAt   time.Time
	fetching    bool
	invalidated bool
	// done is closed when the in-flight fetch settles.
	done chan struct{}
}

// NewClient creates a query cache.
func NewClient(cfg Config) *Client {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	switch {
	case cfg.Retries == 0:
		cfg.Retries = DefaultRetries
	case cfg.Retries < 0:
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if cfg.ErrorCooldown <= 0 {
		cfg.ErrorCooldown = DefaultErrorCooldown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cache, err := lru.New[string, *entry](cfg.CacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size, which we never pass.
		panic(err)
	}
	metrics.RegisterQueryMetrics()
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cache:         cache,
		ctx:           ctx,
		cancel:        cancel,
		retries:       cfg.Retries,
		retryDelay:    cfg.RetryDelay,
		maxRetryDelay: cfg.MaxRetryDelay,
		errorCooldown: cfg.ErrorCooldown,
		staleTime:     cfg.StaleTime,
		now:           cfg.Now,
	}
}

// Close cancels the in-flight fetches. The cached data stays readable.
func (c *Client) Close() {
	c.cancel()
}

// Use reads a query without blocking. If the query is enabled and its data
// is missing or stale, a fetch is started in the background; the caller can
// wait for it with Wait and read again.
func Use[T any](c *Client, key Key, fetch FetchFunc[T], opts Options) Result[T] {
	if !opts.Enabled {
		return readDisabled[T](c, key)
	}
	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if c.needsFetch(e, opts) {
		c.startFetch(key, e, erase(fetch))
	} else if e.hasData {
		metrics.QueryCacheHits.WithLabelValues(key.Name()).Inc()
	}
	return snapshot[T](e)
}

// Fetch reads a query, waiting for a fetch to settle if the data is missing
// or stale. If ctx is done first, the returned result has StatusError and
// ctx's error, along with any data cached so far.
func Fetch[T any](ctx context.Context, c *Client, key Key, fetch FetchFunc[T], opts Options) Result[T] {
	if !opts.Enabled {
		return readDisabled[T](c, key)
	}
	e := c.entry(key)
	e.mu.Lock()
	if !c.needsFetch(e, opts) && !e.fetching {
		if e.hasData {
			metrics.QueryCacheHits.WithLabelValues(key.Name()).Inc()
		}
		r := snapshot[T](e)
		e.mu.Unlock()
		return r
	}
	done := e.done
	if !e.fetching {
		done = c.startFetch(key, e, erase(fetch))
	}
	e.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		e.mu.Lock()
		defer e.mu.Unlock()
		r := snapshot[T](e)
		r.Status = StatusError
		r.Err = ctx.Err()
		return r
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot[T](e)
}

// Wait blocks until the in-flight fetch of key, if any, settles.
func (c *Client) Wait(ctx context.Context, key Key) error {
	e, ok := c.cache.Peek(key.String())
	if !ok {
		return nil
	}
	e.mu.Lock()
	fetching, done := e.fetching, e.done
	e.mu.Unlock()
	if !fetching {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invalidate marks the cached data of key as stale, so the next enabled read
// fetches it again. The data is still served meanwhile.
func (c *Client) Invalidate(key Key) {
	if e, ok := c.cache.Peek(key.String()); ok {
		e.mu.Lock()
		e.invalidated = true
		e.mu.Unlock()
	}
}

// InvalidatePrefix invalidates every cached key that starts with the parts
// of prefix, like every tracker search of one election.
func (c *Client) InvalidatePrefix(prefix Key) {
	p := prefix.String()
	for _, k := range c.cache.Keys() {
		if k != p && !strings.HasPrefix(k, p+"/") {
			continue
		}
		if e, ok := c.cache.Peek(k); ok {
			e.mu.Lock()
			e.invalidated = true
			e.mu.Unlock()
		}
	}
}

// Remove drops key from the cache. An in-flight fetch for it still settles,
// but its value is discarded.
func (c *Client) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(key.String())
}

// Clear drops every key from the cache.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Len returns the number of cached keys.
func (c *Client) Len() int {
	return c.cache.Len()
}

func (c *Client) entry(key Key) *entry {
	k := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.cache.Get(k); ok {
		return e
	}
	e := &entry{}
	c.cache.Add(k, e)
	return e
}

// readDisabled reads key without creating it nor fetching. Data loaded by
// an enabled read is reported; anything else reads as idle.
func readDisabled[T any](c *Client, key Key) Result[T] {
	e, ok := c.cache.Peek(key.String())
	if !ok {
		return Result[T]{Status: StatusIdle}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.data.(T)
	if !e.hasData || !ok {
		return Result[T]{Status: StatusIdle}
	}
	return Result[T]{
		Status:    StatusSuccess,
		Data:      v,
		HasData:   true,
		UpdatedAt: e.settledAt,
		Fetching:  e.fetching,
	}
}

// needsFetch must be called with e.mu held.
func (c *Client) needsFetch(e *entry, opts Options) bool {
	if e.fetching {
		return false
	}
	if e.invalidated || (!e.hasData && e.err == nil) {
		return true
	}
	age := c.now().Sub(e.settledAt)
	if e.err != nil {
		// staleTime counts from a successful retrieval only.
		return age >= c.errorCooldown
	}
	staleTime := opts.StaleTime
	if staleTime == 0 {
		staleTime = c.staleTime
	}
	return age >= staleTime
}

// startFetch must be called with e.mu held.
func (c *Client) startFetch(key Key, e *entry, fetch FetchFunc[any]) chan struct{} {
	e.fetching = true
	e.invalidated = false
	e.done = make(chan struct{})
	done := e.done
	name := key.Name()
	k := key.String()
	metrics.QueryFetches.WithLabelValues(name).Inc()
	log.Debugw("query fetch", "key", k)

	go func() {
		start := time.Now()
		v, err, shared := c.group.Do(k, func() (any, error) {
			return c.fetchWithRetry(k, fetch)
		})
		metrics.QueryFetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.QueryFetchErrors.WithLabelValues(name).Inc()
			log.Warnw("query fetch failed", "key", k, "error", err)
		} else {
			log.Debugw("query settled", "key", k, "shared", shared, "took", time.Since(start))
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			e.err = err
		} else {
			e.data, e.hasData, e.err = v, true, nil
		}
		e.settledAt = c.now()
		e.fetching = false
		close(done)
	}()
	return done
}

func (c *Client) fetchWithRetry(key string, fetch FetchFunc[any]) (any, error) {
	var v any
	op := func() error {
		var err error
		v, err = fetch(c.ctx)
		if err != nil && c.ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.MaxInterval = c.maxRetryDelay
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), c.ctx)
	err := backoff.RetryNotify(op, policy, func(err error, d time.Duration) {
		log.Debugw("retrying query fetch", "key", key, "error", err, "in", d)
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	return v, nil
}

// Permanent wraps err so that the fetch is not retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func erase[T any](fetch FetchFunc[T]) FetchFunc[any] {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

// snapshot must be called with e.mu held.
func snapshot[T any](e *entry) Result[T] {
	r := Result[T]{
		Err:       e.err,
		UpdatedAt: e.settledAt,
		Fetching:  e.fetching,
	}
	if e.hasData {
		if v, ok := e.data.(T); ok {
			r.Data, r.HasData = v, true
		}
	}
	switch {
	case e.fetching && !r.HasData:
		r.Status = StatusLoading
		r.Err = nil
	case e.err != nil:
		r.Status = StatusError
	case r.HasData:
		r.Status = StatusSuccess
	default:
		r.Status = StatusIdle
	}
	return r
}
