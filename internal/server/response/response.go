// Package response writes the {data, error} envelope every leads API
// endpoint answers with.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/cofina/leads/pkg/errors"
)

// Response is the API envelope. Exactly one of Data and Error is set.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is the error half of the envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success wraps data.
func Success(data any) Response { return Response{Data: data} }

// Fail builds an error envelope.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// codes maps the statuses this API returns to envelope codes.
var codes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusUnauthorized:        "UNAUTHORIZED",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusMethodNotAllowed:    "METHOD_NOT_ALLOWED",
	http.StatusConflict:            "CONFLICT",
	http.StatusInternalServerError: "INTERNAL_ERROR",
	http.StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
}

// JSON writes resp with status. Encoding errors are dropped: the header is
// already out.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func fail(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, Fail(codes[status], message, details))
}

// OK writes data with 200.
func OK(w http.ResponseWriter, data any) { JSON(w, http.StatusOK, Success(data)) }

// Created writes data with 201.
func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, Success(data)) }

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, message, details string) {
	fail(w, http.StatusBadRequest, message, details)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter, message, details string) {
	fail(w, http.StatusUnauthorized, message, details)
}

// MethodNotAllowed writes a 405 naming method.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	fail(w, http.StatusMethodNotAllowed, "Method not allowed", method+" is not supported here")
}

// InternalError writes a 500. err is never echoed to the client.
func InternalError(w http.ResponseWriter, _ error) {
	fail(w, http.StatusInternalServerError, "Internal server error", "")
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	fail(w, http.StatusServiceUnavailable, "Service unavailable", message)
}

// ErrorFromType picks the status from err's type: unknown categories are
// 404, rejected input and unparsable bodies 400, duplicates 409, and
// anything else 500.
func ErrorFromType(w http.ResponseWriter, err error) {
	var parse *errors.ParseError
	switch {
	case errors.IsNotFound(err):
		fail(w, http.StatusNotFound, err.Error(), "")
	case errors.IsValidationError(err), errors.As(err, &parse):
		fail(w, http.StatusBadRequest, err.Error(), "")
	case errors.IsAlreadyExists(err):
		fail(w, http.StatusConflict, err.Error(), "")
	default:
		InternalError(w, err)
	}
}
