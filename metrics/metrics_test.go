package metrics

import (
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHandler(t *testing.T) {
	RegisterQueryMetrics()
	RegisterQueryMetrics()
	SetInfo("test")
	QueryFetches.WithLabelValues("ELECTIONS").Inc()

	w := httptest.NewRecorder()
	Handler()(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	qt.Assert(t, w.Code, qt.Equals, 200)
	qt.Assert(t, body, qt.Contains, `explorer_info{version="test"} 1`)
	qt.Assert(t, body, qt.Contains, `explorer_query_fetches_total{query="ELECTIONS"}`)
}
