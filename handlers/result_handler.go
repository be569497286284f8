package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub021/middleware"
	"github.com/football-investment/practice-booking-system-sub021/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService) *ResultHandler {
	return &ResultHandler{
		resultService: rs,
	}
}

// SubmitHandler handles POST /sessions/{sessionID}/result. Head-to-head
// sessions expect participant1_score/participant2_score, individual sessions
// expect participant_id/metric_value.
func (h *ResultHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.SessionID = sessionID
	input.CallerID = currentUserID

	session, err := h.resultService.SubmitResult(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
