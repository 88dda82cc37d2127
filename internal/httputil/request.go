package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"lexdesk/internal/domain"
)

// ParseJSON decodes JSON from the request body into the given destination.
// Bodies are capped at 10MB.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	return decodeBody(w, r, dest, false)
}

// ParseOptionalJSON is ParseJSON for endpoints whose body may be omitted.
// An empty body leaves dest untouched, whatever Content-Length says
// (chunked requests report -1).
func ParseOptionalJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	return decodeBody(w, r, dest, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return domain.NewValidation("invalid JSON: empty body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	err := json.NewDecoder(r.Body).Decode(dest)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return domain.NewValidation("invalid JSON: %v", err)
	}
	return nil
}

// IfMatch reads the If-Match header as a version stamp.
// Accepts 3, "3" and W/"3". A missing header or "*" means no precondition.
func IfMatch(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}

	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	stamp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || stamp < 1 {
		return nil, domain.NewValidation("If-Match must be a version stamp, got %q", r.Header.Get("If-Match"))
	}
	return &stamp, nil
}

// QueryInt parses an integer query parameter, returning def when it is absent
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidation("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// ETag formats a version stamp as a strong entity tag
func ETag(stamp int64) string {
	return fmt.Sprintf("%q", strconv.FormatInt(stamp, 10))
}
