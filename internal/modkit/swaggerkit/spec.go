package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"brushline/internal/platform/config"
	perr "brushline/internal/platform/errors"
)

const errorSchemaRef = "#/components/schemas/ErrorResponse"

// serveDocJSON serves the document with the envelope error responses filled in
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, err := prepareSpec(docReader(), config.New().Prefix("CORE_API_"))
		if err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// prepareSpec parses raw and normalizes it for the swagger UI
func prepareSpec(raw string, cfg config.Conf) (map[string]any, error) {
	var spec map[string]any
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, err
	}

	ensureOAS3(spec, "/api/v1")
	if v := cfg.MayString("DOCS_TITLE_SUFFIX", ""); v != "" {
		if info, ok := spec["info"].(map[string]any); ok {
			if title, ok := info["title"].(string); ok {
				info["title"] = title + " " + v
			}
		}
	}
	ensureErrorSchema(spec)
	addErrorResponses(spec)
	return spec, nil
}

// ensureOAS3 lifts swagger 2 and 3.1 documents to 3.0.3, which the UI renders,
// and sets a server url when none is present
func ensureOAS3(spec map[string]any, url string) {
	if _, ok := spec["swagger"]; ok {
		delete(spec, "swagger")
		spec["openapi"] = "3.0.3"
	}
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// ensureErrorSchema adds the error envelope model; code lists every wire name
func ensureErrorSchema(spec map[string]any) {
	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	var codes []any
	for c := perr.ErrorCodeUnknown; c <= perr.ErrorCodeDB; c++ {
		codes = append(codes, c.String())
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Error envelope",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "string", "enum": codes},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status", "code"},
	}
}

func errorResponse(status int, code perr.ErrorCode, desc, msg string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": errorSchemaRef},
				"example": map[string]any{
					"status_code": status,
					"status":      http.StatusText(status),
					"code":        code.String(),
					"error":       msg,
				},
			},
		},
	}
}

// addErrorResponses fills in the error statuses each operation can return
// unless the document already declares them
func addErrorResponses(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	internal := errorResponse(500, perr.ErrorCodeUnknown, "Internal Server Error", "clickhouse query failed")
	badRequest := errorResponse(400, perr.ErrorCodeValidation, "Bad Request", "granularity must be one of hour, day, month, year")
	notFound := errorResponse(404, perr.ErrorCodeNotFound, "Not Found", "session not found")
	conflict := errorResponse(409, perr.ErrorCodeConflict, "Conflict", "series request superseded by a newer one")

	for path, node := range paths {
		ops, ok := node.(map[string]any)
		if !ok {
			continue
		}
		for method, opAny := range ops {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			add := func(code string, resp map[string]any) {
				if _, exists := resps[code]; !exists {
					resps[code] = resp
				}
			}
			add("500", internal)
			if method == "post" {
				add("400", badRequest)
			}
			if strings.Contains(path, "{id}") {
				add("404", notFound)
			}
			if strings.HasSuffix(path, "/series") {
				add("409", conflict)
			}
		}
	}
}
