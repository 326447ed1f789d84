package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goliatone/go-regform/pkg/client"
	"github.com/goliatone/go-regform/pkg/model"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type messageResponse struct {
	Message string `json:"message"`
}

type submitResponse struct {
	RegistrationID model.RegistrationID `json:"registration_id"`
}

// maxBody caps submission payloads.
const maxBody = 1 << 20

type server struct {
	backend client.Collaborators
	opts    Options
}

// OfferHandler answers GET requests for the caller's offer.
func OfferHandler(backend client.Collaborators, opts Options) http.Handler {
	s := &server{backend: backend, opts: NewOptions(func(o *Options) { *o = opts })}
	return s.guarded([]string{http.MethodGet}, s.offer)
}

// FormHandler answers GET requests for the registration form.
func FormHandler(backend client.Collaborators, opts Options) http.Handler {
	s := &server{backend: backend, opts: NewOptions(func(o *Options) { *o = opts })}
	return s.guarded([]string{http.MethodGet}, s.form)
}

// ResponseHandler answers GET for prior answers, POST to create and PUT to
// update a registration.
func ResponseHandler(backend client.Collaborators, opts Options) http.Handler {
	s := &server{backend: backend, opts: NewOptions(func(o *Options) { *o = opts })}
	return s.guarded([]string{http.MethodGet, http.MethodPost, http.MethodPut}, s.response)
}

func (s *server) guarded(methods []string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if !allowed(methods, r.Method) {
			w.Header().Set("Allow", joinMethods(methods))
			writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}
		if s.opts.Guard != nil {
			if err := s.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		s.opts.Logger.Debug("mockapi: request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(client.RequestIDHeader),
		)
		next(w, r)
	})
}

func (s *server) offer(w http.ResponseWriter, r *http.Request) {
	eventID, err := queryInt(r, "event_id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.backend.GetOffer(r.Context(), eventID)
	if msg := failure(result.Error, err); msg != "" {
		writeMessage(w, http.StatusNotFound, msg)
		return
	}
	writeJSON(w, http.StatusOK, result.Offer)
}

func (s *server) form(w http.ResponseWriter, r *http.Request) {
	eventID, err := queryInt(r, "event_id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	offerID, err := queryInt(r, "offer_id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.backend.GetRegistrationForm(r.Context(), eventID, offerID)
	if msg := failure(result.Error, err); msg != "" {
		status := result.StatusCode
		if status < 400 {
			status = http.StatusNotFound
		}
		writeMessage(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, result.Form)
}

func (s *server) response(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		result, err := s.backend.GetRegistrationResponse(r.Context())
		if msg := failure(result.Error, err); msg != "" {
			writeMessage(w, http.StatusNotFound, msg)
			return
		}
		writeJSON(w, http.StatusOK, result.Form)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	var payload model.Submission
	if err := json.Unmarshal(body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid submission: %v", err))
		return
	}

	isUpdate := r.Method == http.MethodPut
	result, err := s.backend.SubmitResponse(r.Context(), payload, isUpdate)
	status := result.Form.Status
	if msg := failure(result.Error, err); msg != "" || !result.Succeeded() {
		if status < 400 {
			status = http.StatusInternalServerError
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		writeMessage(w, status, msg)
		return
	}
	writeJSON(w, status, submitResponse{RegistrationID: result.Form.RegistrationID})
}

func failure(message string, err error) string {
	if message != "" {
		return message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	writeMessage(w, code, http.StatusText(code))
}

func allowed(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

func joinMethods(methods []string) string {
	out := ""
	for i, m := range methods {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}
