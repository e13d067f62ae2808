package api

import (
	"encoding/json"
	"net/http"
)

type lookupRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type lookupResponse struct {
	Outcome      string        `json:"outcome"`
	Step         string        `json:"step"`
	Registration *Registration `json:"registration,omitempty"`
}

func (a *API) postLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid body for lookup", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid body",
		})
		return
	}

	result, err := a.wizard.Lookup(ctx, req.PhoneNumber)
	if err != nil {
		logger.Warn("Lookup failed", "error", err)

		a.writeRegistrationError(w, err)
		return
	}

	resp := lookupResponse{
		Outcome: string(result.Outcome),
		Step:    result.Step.String(),
	}
	if result.Registration != nil {
		apiReg := registrationToApiRegistration(*result.Registration)
		resp.Registration = &apiReg
	}

	a.writeJSON(w, http.StatusOK, resp)
}
