package httprouter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.vocdoni.io/explorer/log"
)

// maxLoggedBody is how much of a reply body goes to the debug log.
const maxLoggedBody = 256

var errConnectionClosed = errors.New("connection is closed")

// Message is what a RouterNamespace receives for each routed request. The
// namespace fills Data in ProcessData; the handler replies via Context.Send.
type Message struct {
	Data      any
	TimeStamp time.Time
	Path      []string
	Context   *HTTPContext
}

// HTTPContext holds the request and the writer of one routed call. Send
// must be called exactly once; the router waits for it.
type HTTPContext struct {
	Writer  http.ResponseWriter
	Request *http.Request

	sent chan struct{}
}

// URLParam returns the chi path parameter key, as in {electionID}.
func (h *HTTPContext) URLParam(key string) string {
	return chi.URLParam(h.Request, key)
}

// QueryParam returns the first value of the URL query parameter key.
func (h *HTTPContext) QueryParam(key string) string {
	return h.Request.URL.Query().Get(key)
}

// Header returns the request header value for key.
func (h *HTTPContext) Header(key string) string {
	return h.Request.Header.Get(key)
}

// Send writes msg as a JSON reply with the given status and releases the
// router. A 204 reply carries no body.
func (h *HTTPContext) Send(msg []byte, httpStatusCode int) error {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("recovered http send panic: %v", r)
		}
	}()
	defer close(h.sent)
	defer h.Request.Body.Close()

	if httpStatusCode < 100 || httpStatusCode >= 600 {
		return fmt.Errorf("http status code %d not supported", httpStatusCode)
	}
	if h.Request.Context().Err() != nil {
		return errConnectionClosed
	}
	h.Writer.Header().Set("Content-Type", DefaultContentType)

	if httpStatusCode == http.StatusNoContent {
		h.Writer.WriteHeader(httpStatusCode)
		log.Debugw("http response", "path", h.Request.URL.Path, "status", httpStatusCode)
		return nil
	}

	// body plus trailing newline
	h.Writer.Header().Set("Content-Length", strconv.Itoa(len(msg)+1))
	h.Writer.WriteHeader(httpStatusCode)
	log.Debugw("http response", "path", h.Request.URL.Path, "status", httpStatusCode, "data", preview(msg))

	if _, err := h.Writer.Write(msg); err != nil {
		return err
	}
	_, err := h.Writer.Write([]byte{'\n'})
	return err
}

func preview(msg []byte) string {
	if len(msg) > maxLoggedBody {
		return string(msg[:maxLoggedBody]) + "..."
	}
	return string(msg)
}
