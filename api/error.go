package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soumya-corp/sammelan-registration/registration"
)

type ErrorCode string

const (
	EmptyBody            ErrorCode = "EmptyBody"
	InvalidBody          ErrorCode = "InvalidBody"
	InputValidationError ErrorCode = "InputValidationError"
	NotFound             ErrorCode = "NotFound"
	AlreadyExists        ErrorCode = "AlreadyExists"
	AlreadyCompleted     ErrorCode = "AlreadyCompleted"
	PaymentRejected      ErrorCode = "PaymentRejected"
	RegistrationClosed   ErrorCode = "RegistrationClosed"
	InvalidCursor        ErrorCode = "InvalidCursor"
	LimitOutOfBounds     ErrorCode = "LimitOutOfBounds"
	InternalError        ErrorCode = "InternalError"
)

type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (a *API) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		a.logger.Error("failed to marshal response body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code": "InternalError", "message": "Failed to build response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(jsonBody)
}

func (a *API) writeError(w http.ResponseWriter, statusCode int, e Error) {
	a.writeJSON(w, statusCode, e)
}

// writeRegistrationError maps a domain error to the HTTP response the
// frontend switches on. Anything unrecognized is a 500 with no detail.
func (a *API) writeRegistrationError(w http.ResponseWriter, err error) {
	var regErr *registration.Error
	if errors.As(err, &regErr) {
		switch regErr.Reason {
		case registration.REASON_VALIDATION_FAILED:
			a.writeError(w, http.StatusBadRequest, Error{
				Code:    InputValidationError,
				Message: regErr.Message,
				Fields:  regErr.Fields,
			})
			return
		case registration.REASON_REGISTRATION_DOES_NOT_EXIST, registration.REASON_CONTACT_DOES_NOT_EXIST:
			a.writeError(w, http.StatusNotFound, Error{
				Code:    NotFound,
				Message: regErr.Message,
			})
			return
		case registration.REASON_REGISTRATION_ALREADY_EXISTS:
			a.writeError(w, http.StatusConflict, Error{
				Code:    AlreadyExists,
				Message: regErr.Message,
			})
			return
		case registration.REASON_ALREADY_COMPLETED:
			a.writeError(w, http.StatusConflict, Error{
				Code:    AlreadyCompleted,
				Message: regErr.Message,
			})
			return
		case registration.REASON_PAYMENT_REJECTED:
			a.writeError(w, http.StatusBadRequest, Error{
				Code:    PaymentRejected,
				Message: regErr.Message,
			})
			return
		case registration.REASON_REGISTRATION_CLOSED:
			a.writeError(w, http.StatusForbidden, Error{
				Code:    RegistrationClosed,
				Message: regErr.Message,
			})
			return
		case registration.REASON_INVALID_CURSOR:
			a.writeError(w, http.StatusBadRequest, Error{
				Code:    InvalidCursor,
				Message: "Cursor is invalid",
			})
			return
		}
	}

	a.writeError(w, http.StatusInternalServerError, Error{
		Code:    InternalError,
		Message: "Something went wrong",
	})
}
