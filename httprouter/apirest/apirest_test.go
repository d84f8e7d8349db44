package apirest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/explorer/httprouter"
)

func TestRouterWithAPI(t *testing.T) {
	r := httprouter.HTTProuter{}
	r.NewRouter()
	srv := httptest.NewServer(r.Mux)
	defer srv.Close()
	url := srv.URL + "/api"

	api, err := NewAPI(&r, "/api/")
	qt.Assert(t, err, qt.IsNil)

	qt.Assert(t, api.RegisterMethod("/hello/{name}", "GET", MethodAccessTypePublic,
		func(msg *APIdata, ctx *httprouter.HTTPContext) error {
			return ctx.Send([]byte(fmt.Sprintf("hello %s!", ctx.URLParam("name"))), 200)
		}), qt.IsNil)
	qt.Assert(t, api.RegisterMethod("/admin/*", "POST", MethodAccessTypeAdmin,
		func(msg *APIdata, ctx *httprouter.HTTPContext) error {
			return ctx.Send(msg.Data, 200)
		}), qt.IsNil)
	qt.Assert(t, api.RegisterMethod("/fail", "GET", MethodAccessTypePublic,
		func(msg *APIdata, ctx *httprouter.HTTPContext) error {
			return APIerror{Err: errors.New("nothing here"), Code: 4999, HTTPstatus: HTTPstatusNotFound}.With("really")
		}), qt.IsNil)
	qt.Assert(t, api.RegisterMethod("/x", "GET", "quota", nil), qt.IsNotNil)

	resp, code := doRequest(t, url+"/hello/john", "", "GET", nil)
	qt.Check(t, code, qt.Equals, 200)
	qt.Check(t, string(resp), qt.Equals, "hello john!\n")

	// no admin token set, admin handlers are closed
	resp, code = doRequest(t, url+"/admin/do", "", "POST", []byte("hello"))
	qt.Check(t, code, qt.Equals, http.StatusUnauthorized)
	qt.Check(t, string(resp), qt.Contains, "admin token not valid")

	api.SetAdminToken("abcd")
	resp, code = doRequest(t, url+"/admin/do", "abcd", "POST", []byte("hello"))
	qt.Check(t, code, qt.Equals, 200)
	qt.Check(t, string(resp), qt.Equals, "hello\n")
	_, code = doRequest(t, url+"/admin/do", "abcde", "POST", []byte("hello"))
	qt.Check(t, code, qt.Equals, http.StatusUnauthorized)

	resp, code = doRequest(t, url+"/fail", "", "GET", nil)
	qt.Check(t, code, qt.Equals, http.StatusNotFound)
	qt.Check(t, string(resp), qt.Equals, `{"error":"nothing here: really","code":4999}`+"\n")

	_, code = doRequest(t, srv.URL+"/ping", "", "GET", nil)
	qt.Check(t, code, qt.Equals, 200)
}

func TestNewAPIInvalidRoute(t *testing.T) {
	r := httprouter.HTTProuter{}
	r.NewRouter()
	_, err := NewAPI(&r, "api")
	qt.Assert(t, err, qt.IsNotNil)
}

func doRequest(t *testing.T, url, authToken, method string, body []byte) ([]byte, int) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	qt.Assert(t, err, qt.IsNil)
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	resp, err := http.DefaultClient.Do(req)
	qt.Assert(t, err, qt.IsNil)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	qt.Assert(t, err, qt.IsNil)
	return respBody, resp.StatusCode
}
