package registration

import "fmt"

type ErrorReason string

const (
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_REGISTRATION_DOES_NOT_EXIST     ErrorReason = "REGISTRATION_DOES_NOT_EXIST"
	REASON_REGISTRATION_ALREADY_EXISTS     ErrorReason = "REGISTRATION_ALREADY_EXISTS"
	REASON_CONTACT_DOES_NOT_EXIST          ErrorReason = "CONTACT_DOES_NOT_EXIST"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_VALIDATION_FAILED               ErrorReason = "VALIDATION_FAILED"
	REASON_INVALID_TRANSITION              ErrorReason = "INVALID_TRANSITION"
	REASON_UPLOAD_FAILED                   ErrorReason = "UPLOAD_FAILED"
	REASON_CHECKOUT_FAILED                 ErrorReason = "CHECKOUT_FAILED"
	REASON_PAYMENT_REJECTED                ErrorReason = "PAYMENT_REJECTED"
	REASON_ALREADY_COMPLETED               ErrorReason = "ALREADY_COMPLETED"
	REASON_REGISTRATION_CLOSED             ErrorReason = "REGISTRATION_CLOSED"
	REASON_TIMEOUT                         ErrorReason = "TIMEOUT"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error

	// Fields is set on validation errors only: field name -> message.
	Fields map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewRegistrationAlreadyExistsError(message string, cause error) *Error {
	return newRegistrationError(REASON_REGISTRATION_ALREADY_EXISTS, message, cause)
}

func NewRegistrationDoesNotExistError(message string, cause error) *Error {
	return newRegistrationError(REASON_REGISTRATION_DOES_NOT_EXIST, message, cause)
}

func NewContactDoesNotExistError(message string, cause error) *Error {
	return newRegistrationError(REASON_CONTACT_DOES_NOT_EXIST, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newRegistrationError(REASON_INVALID_CURSOR, message, cause)
}

func NewValidationError(fields map[string]string) *Error {
	err := newRegistrationError(REASON_VALIDATION_FAILED, "One or more fields are invalid", nil)
	err.Fields = fields
	return err
}

func NewInvalidTransitionError(step Step, event Event) *Error {
	return newRegistrationError(REASON_INVALID_TRANSITION, fmt.Sprintf("Event %T is not valid at step %s", event, step), nil)
}

func NewUploadFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_UPLOAD_FAILED, message, cause)
}

func NewCheckoutFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_CHECKOUT_FAILED, message, cause)
}

func NewPaymentRejectedError(message string) *Error {
	return newRegistrationError(REASON_PAYMENT_REJECTED, message, nil)
}

func NewAlreadyCompletedError(phoneNumber string) *Error {
	return newRegistrationError(REASON_ALREADY_COMPLETED, fmt.Sprintf("Registration for %s is already paid", phoneNumber), nil)
}

func NewRegistrationClosedError(message string) *Error {
	return newRegistrationError(REASON_REGISTRATION_CLOSED, message, nil)
}

func NewTimeoutError(message string) *Error {
	return newRegistrationError(REASON_TIMEOUT, message, nil)
}
