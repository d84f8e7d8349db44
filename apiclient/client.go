// Package apiclient is the HTTP client of the election backend API. It
// implements queries.DataAccess.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.vocdoni.io/explorer/log"
	"go.vocdoni.io/explorer/queries"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = "GET"
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = "POST"

	// DefaultTimeout bounds every request to the backend.
	DefaultTimeout = 8 * time.Second

	userAgent = "Vocdoni explorer / 1.0"
)

var (
	// ErrNotOK is returned when the backend replies with a status other than 200.
	ErrNotOK = errors.New("API server returned status code is not 200")
	// ErrInvalidID is returned for identifiers that cannot be a path segment.
	// No backend resource can match them, so it wraps queries.ErrNotFound.
	ErrInvalidID = fmt.Errorf("invalid identifier: %w", queries.ErrNotFound)
)

// HTTPclient is the election backend HTTP client.
type HTTPclient struct {
	c     *http.Client
	token *uuid.UUID
	addr  *url.URL
}

var _ queries.DataAccess = (*HTTPclient)(nil)

// NewHTTPclient creates a new HTTP(s) backend client for the API served at
// addr. The bearer token is optional.
func NewHTTPclient(addr *url.URL, bearerToken *uuid.UUID) (*HTTPclient, error) {
	if addr == nil || addr.Scheme == "" || addr.Host == "" {
		return nil, fmt.Errorf("invalid backend address %q", addr)
	}
	tr := &http.Transport{
		IdleConnTimeout:    10 * time.Second,
		DisableCompression: false,
		WriteBufferSize:    1 * 1024 * 1024, // 1 MiB
		ReadBufferSize:     1 * 1024 * 1024, // 1 MiB
	}
	return &HTTPclient{
		c:     &http.Client{Transport: tr, Timeout: DefaultTimeout},
		token: bearerToken,
		addr:  addr,
	}, nil
}

// SetAuthToken configures the bearer authentication token.
func (c *HTTPclient) SetAuthToken(token *uuid.UUID) {
	c.token = token
}

// SetHostAddr configures the host address of the API server.
func (c *HTTPclient) SetHostAddr(addr *url.URL) {
	c.addr = addr
}

// Request performs a `method` type raw request to the endpoint specified in
// urlPath, with the given query parameters. If jsonBody is not nil it is sent
// JSON encoded. Returns the response body and the status code.
func (c *HTTPclient) Request(ctx context.Context, method string, jsonBody any,
	params url.Values, urlPath ...string,
) ([]byte, int, error) {
	var body io.Reader
	if jsonBody != nil {
		data, err := json.Marshal(jsonBody)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}
	// urlPath elements are expected to be already escaped
	u := c.addr.JoinPath(urlPath...)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		req.Header.Set("Authorization", "Bearer "+c.token.String())
	}
	log.Debugf("%s %s", method, u.String())
	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return data, resp.StatusCode, nil
}

// get performs a GET request and decodes the JSON reply into v.
// pathSegment escapes id as one URL path segment. Dot segments are rejected
// since JoinPath would resolve them.
func pathSegment(id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return url.PathEscape(id), nil
}

func (c *HTTPclient) get(ctx context.Context, v any, params url.Values, urlPath ...string) error {
	resp, code, err := c.Request(ctx, HTTPGET, nil, params, urlPath...)
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path.Join(urlPath...), queries.ErrNotFound)
	default:
		return fmt.Errorf("%w: %d (%s)", ErrNotOK, code, bytes.TrimSpace(resp))
	}
	if err := json.Unmarshal(resp, v); err != nil {
		return fmt.Errorf("cannot decode %s reply: %w", path.Join(urlPath...), err)
	}
	return nil
}
