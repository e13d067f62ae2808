package api

import (
	"encoding/json"
	"net/http"

	"github.com/soumya-corp/sammelan-registration/registration"
)

type checkoutResponse struct {
	Key            string `json:"key"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	OrderId        string `json:"orderId"`
	PrefillName    string `json:"prefillName"`
	PrefillContact string `json:"prefillContact"`
}

func (a *API) postCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)
	phoneNumber := r.PathValue("phoneNumber")

	session, err := a.wizard.StartCheckout(ctx, phoneNumber)
	if err != nil {
		logger.Error("Failed to start checkout", "error", err, "phoneNumber", phoneNumber)

		a.writeRegistrationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, checkoutResponse{
		Key:            session.Key,
		Amount:         session.Amount,
		Currency:       session.Currency,
		OrderId:        session.OrderID,
		PrefillName:    session.PrefillName,
		PrefillContact: session.PrefillContact,
	})
}

// paymentRequest is the callback triple the checkout widget posts after a
// successful charge.
type paymentRequest struct {
	RazorpayPaymentId string `json:"razorpay_payment_id"`
	RazorpayOrderId   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (a *API) postPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)
	phoneNumber := r.PathValue("phoneNumber")

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid body for payment confirmation", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid body",
		})
		return
	}

	reg, err := a.wizard.ConfirmPayment(ctx, phoneNumber, registration.Confirmation{
		PaymentID: req.RazorpayPaymentId,
		OrderID:   req.RazorpayOrderId,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		logger.Error("Failed to confirm payment", "error", err, "phoneNumber", phoneNumber)

		a.writeRegistrationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, registrationToApiRegistration(reg))
}

type paymentFailureRequest struct {
	Description string `json:"description"`
}

func (a *API) postPaymentFailure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)
	phoneNumber := r.PathValue("phoneNumber")

	var req paymentFailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid body for payment failure", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid body",
		})
		return
	}

	reg, err := a.wizard.FailPayment(ctx, phoneNumber, req.Description)
	if err != nil {
		logger.Error("Failed to record payment failure", "error", err, "phoneNumber", phoneNumber)

		a.writeRegistrationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, registrationToApiRegistration(reg))
}
