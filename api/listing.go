package api

import (
	"net/http"
	"strconv"
)

type listRegistrationsResponse struct {
	Data        []Registration `json:"data"`
	Cursor      *string        `json:"cursor,omitempty"`
	HasNextPage bool           `json:"hasNextPage"`
}

func (a *API) getRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		userLimit, err := strconv.Atoi(limitParam)
		if err != nil || userLimit < 1 || userLimit > 50 {
			logger.Warn("Limit out of bounds", "limit", limitParam)

			a.writeError(w, http.StatusBadRequest, Error{
				Code:    LimitOutOfBounds,
				Message: "Limit must be between 1 and 50",
			})
			return
		}
		limit = userLimit
	}

	var cursor *string
	if cursorParam := r.URL.Query().Get("cursor"); cursorParam != "" {
		cursor = &cursorParam
	}

	result, err := a.db.ListRegistrations(ctx, int32(limit), cursor)
	if err != nil {
		logger.Error("Failed to list registrations", "error", err)

		a.writeRegistrationError(w, err)
		return
	}

	respRegs := []Registration{}
	for _, reg := range result.Data {
		respRegs = append(respRegs, registrationToApiRegistration(reg))
	}

	a.writeJSON(w, http.StatusOK, listRegistrationsResponse{
		Data:        respRegs,
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}
