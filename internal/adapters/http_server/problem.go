package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"satn_chatbot/internal/domain"
)

const maxBodyBytes = 1 << 20

type problem struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Status int      `json:"status"`
	Detail string   `json:"detail,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemDoc(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemDoc(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps a service error to a problem response. notFound, when
// set, replaces the detail of a 404. In dev the error text is echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error, dev bool, notFound string) {
	status, title := http.StatusInternalServerError, "Internal Server Error"
	detail := ""
	switch {
	case errors.Is(err, domain.ErrInvalid):
		status, title, detail = http.StatusBadRequest, "Bad Request", cause(err, domain.ErrInvalid)
	case errors.Is(err, domain.ErrUnauthorized):
		status, title, detail = http.StatusUnauthorized, "Unauthorized", cause(err, domain.ErrUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		status, title, detail = http.StatusForbidden, "Forbidden", cause(err, domain.ErrForbidden)
	case errors.Is(err, domain.ErrNotFound):
		status, title, detail = http.StatusNotFound, "Not Found", notFound
		if detail == "" {
			detail = "not found"
		}
	case errors.Is(err, domain.ErrConflict):
		status, title, detail = http.StatusConflict, "Conflict", "resource already exists"
	case errors.Is(err, domain.ErrUpstream):
		status, title, detail = http.StatusBadGateway, "Bad Gateway", "upstream service failed"
	}

	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	if status >= 500 {
		if dev {
			detail = strings.TrimSpace(detail + " " + err.Error())
		} else if detail == "" {
			detail = "internal error"
		}
	}
	writeProblem(w, status, title, detail)
}

// cause strips the sentinel prefix of a "%w: detail" error.
func cause(err, sentinel error) string {
	msg := err.Error()
	if s := strings.TrimPrefix(msg, sentinel.Error()+": "); s != msg {
		return s
	}
	return msg
}

// decode reads a size-limited JSON body into dst and validates it. It writes
// the 400 itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		detail := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			detail = "request body is required"
		}
		writeProblem(w, http.StatusBadRequest, "Bad Request", detail)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		// namespace without the root struct name, e.g. messages[0].role
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields = append(fields, fmt.Sprintf("%s: failed %q", ns, fe.Tag()))
	}
	writeProblemDoc(w, problem{
		Type: "about:blank", Title: "Bad Request", Status: http.StatusBadRequest,
		Detail: "validation failed", Errors: fields,
	})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeCached serves v with a weak ETag, answering 304 when the client has it.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cached body")
	}
}
