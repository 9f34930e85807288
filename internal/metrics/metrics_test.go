package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_ObserveHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveHTTP("GET", "/api/v1/users/:id", 404, 15*time.Millisecond)
	c.ObserveHTTP("GET", "/api/v1/users/:id", 404, 5*time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	res, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = res.Body.Close() }()
	b, _ := io.ReadAll(res.Body)
	body := string(b)

	want := `users_api_http_requests_total{method="GET",route="/api/v1/users/:id",status="404"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("missing %q in\n%s", want, body)
	}
	if !strings.Contains(body, "users_api_http_request_duration_seconds_count") {
		t.Error("missing latency histogram")
	}
}
