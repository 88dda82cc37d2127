package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON marshals before writing headers so an encoding failure
// still yields a clean 500 instead of a truncated body.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondVersioned writes a JSON entity together with its version stamp as ETag
func RespondVersioned(w http.ResponseWriter, status int, stamp int64, data interface{}) {
	w.Header().Set("ETag", ETag(stamp))
	RespondJSON(w, status, data)
}

// ProblemDetail is an RFC 7807 body. Extra keys are flattened next to the standard members.
type ProblemDetail struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	return json.Marshal(m)
}

// RespondError writes an RFC 7807 Problem Details error response
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondErrorWithExtras(w, status, detail, nil)
}

// RespondErrorWithExtras writes an RFC 7807 error with additional members,
// e.g. expected/got on a version conflict
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	problem := ProblemDetail{
		Type:   problemType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	}

	payload, err := json.Marshal(problem)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(payload)
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:        "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.2",
	http.StatusForbidden:           "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.4",
	http.StatusNotFound:            "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.5",
	http.StatusConflict:            "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.10",
	http.StatusPreconditionFailed:  "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.13",
	http.StatusInternalServerError: "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.1",
	http.StatusNotImplemented:      "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.2",
	http.StatusGatewayTimeout:      "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.5",
}

func problemType(status int) string {
	if t, ok := problemTypes[status]; ok {
		return t
	}
	return "about:blank"
}
