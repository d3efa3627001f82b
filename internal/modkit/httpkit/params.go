package httpkit

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	perrs "brushline/internal/platform/errors"
)

// Param returns the trimmed route parameter name or an invalid argument error
func Param(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", perrs.InvalidArgf("missing path parameter %s", name)
	}
	return v, nil
}
