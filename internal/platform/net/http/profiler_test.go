package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "brushline/internal/platform/net/http"
)

func TestMountProfiler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		enabled bool
		path    string
		want    int
	}{
		{"index", true, "/debug/pprof/", http.StatusOK},
		{"cmdline", true, "/debug/pprof/cmdline", http.StatusOK},
		{"off", false, "/debug/pprof/", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := phttp.AdaptChi(chi.NewRouter())
			phttp.MountProfiler(r, "/debug", tc.enabled)

			rr := httptest.NewRecorder()
			r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != tc.want {
				t.Fatalf("GET %s = %d, want %d", tc.path, rr.Code, tc.want)
			}
		})
	}
}
