// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// TestHTTPclient is a HTTP client failing the test on any transport error.
type TestHTTPclient struct {
	c       *http.Client
	token   string
	addr    *url.URL
	headers http.Header
	t       testing.TB
}

// SetHeader sets a header sent on every following request.
func (c *TestHTTPclient) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Request performs a request to the path built out of urlPath. The last
// element may carry a query string. Returns the reply body and status code.
func (c *TestHTTPclient) Request(method string, jsonBody any, urlPath ...string) ([]byte, int) {
	var body io.Reader = http.NoBody
	if jsonBody != nil {
		data, err := json.Marshal(jsonBody)
		qt.Assert(c.t, err, qt.IsNil)
		body = bytes.NewReader(data)
	}
	u := *c.addr
	p, rawQuery, _ := strings.Cut(path.Join(urlPath...), "?")
	u.Path = path.Join(u.Path, p)
	u.RawQuery = rawQuery

	req, err := http.NewRequest(method, u.String(), body)
	qt.Assert(c.t, err, qt.IsNil)
	req.Header = c.headers.Clone()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.t.Logf("querying %s", u.String())
	resp, err := c.c.Do(req)
	qt.Assert(c.t, err, qt.IsNil)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	qt.Assert(c.t, err, qt.IsNil)
	return data, resp.StatusCode
}

// NewTestHTTPclient returns a TestHTTPclient for addr. The bearer token is
// optional.
func NewTestHTTPclient(t testing.TB, addr *url.URL, bearerToken string) *TestHTTPclient {
	tr := &http.Transport{
		MaxIdleConns:       10,
		IdleConnTimeout:    5 * time.Second,
		DisableCompression: false,
	}
	return &TestHTTPclient{
		c:       &http.Client{Transport: tr, Timeout: time.Second * 8},
		token:   bearerToken,
		addr:    addr,
		headers: http.Header{},
		t:       t,
	}
}
