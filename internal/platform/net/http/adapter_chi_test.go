package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func header(name string) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Set(name, "1")
			next.ServeHTTP(w, r)
		})
	}
}

func write(status int, body string) Handler {
	return func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestAdaptChi_VerbsRoutesAndMiddleware(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())
	r.Use(header("X-Root"))
	r.Route("/timeline", func(tl Router) {
		tl.Use(header("X-Timeline"))
		if tl.Mux() == nil {
			t.Fatalf("subrouter Mux() returned nil")
		}
		tl.Post("/sessions", write(201, "created"))
		tl.Get("/sessions/{id}", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			_, _ = w.Write([]byte(chi.URLParam(req, "id")))
		})
		tl.Delete("/sessions/{id}", write(204, ""))
	})
	r.Handle("/raw", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		_, _ = w.Write([]byte("std"))
	}))

	do := func(method, path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, httptest.NewRequest(method, path, nil))
		return rr
	}

	if rr := do(stdhttp.MethodPost, "/timeline/sessions"); rr.Code != 201 || rr.Body.String() != "created" {
		t.Fatalf("post = %d %q", rr.Code, rr.Body.String())
	}
	rr := do(stdhttp.MethodGet, "/timeline/sessions/s-1")
	if rr.Code != 200 || rr.Body.String() != "s-1" {
		t.Fatalf("get = %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Root") != "1" || rr.Header().Get("X-Timeline") != "1" {
		t.Fatalf("middleware headers = %v", rr.Header())
	}
	if rr := do(stdhttp.MethodDelete, "/timeline/sessions/s-1"); rr.Code != 204 {
		t.Fatalf("delete = %d", rr.Code)
	}
	if rr := do(stdhttp.MethodPut, "/timeline/sessions/s-1"); rr.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("put = %d, want 405", rr.Code)
	}
	rr = do(stdhttp.MethodGet, "/raw")
	if rr.Body.String() != "std" || rr.Header().Get("X-Timeline") != "" {
		t.Fatalf("raw = %q headers=%v", rr.Body.String(), rr.Header())
	}
}
