package query

import (
	"net/url"
	"strings"
	"time"
)

// Key identifies a query in the cache. The first part names the query kind,
// the rest are its parameters.
type Key []string

// NewKey returns a Key made of the given parts.
func NewKey(name string, params ...string) Key {
	return append(Key{name}, params...)
}

// Name returns the query kind, i.e. the first part of the key.
func (k Key) Name() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// String returns the canonical form of the key. Parts are path escaped, so
// two different keys never share a string.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Status is the state of a query result.
type Status int

const (
	// StatusIdle means the query is disabled and has no data.
	StatusIdle Status = iota
	// StatusLoading means a fetch is in flight and there is no data yet.
	StatusLoading
	// StatusError means the last fetch failed.
	StatusError
	// StatusSuccess means data is available.
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Result is the state of a query as seen by a caller. Exactly one status
// holds at a time. Data is set on success, and is kept on error when a
// refetch of previously loaded data failed.
type Result[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
	// Fetching is true while a fetch for the key is in flight, including
	// background refetches of stale data.
	Fetching bool
}

// IsIdle reports whether the query is disabled and has no data.
func (r Result[T]) IsIdle() bool { return r.Status == StatusIdle }

// IsLoading reports whether the first fetch is still in flight.
func (r Result[T]) IsLoading() bool { return r.Status == StatusLoading }

// IsError reports whether the last fetch failed.
func (r Result[T]) IsError() bool { return r.Status == StatusError }

// IsSuccess reports whether data is available.
func (r Result[T]) IsSuccess() bool { return r.Status == StatusSuccess }
