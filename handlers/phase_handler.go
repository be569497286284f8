package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub021/middleware"
	"github.com/football-investment/practice-booking-system-sub021/services"
)

type PhaseHandler struct {
	phaseService services.PhaseService
}

func NewPhaseHandler(ps services.PhaseService) *PhaseHandler {
	return &PhaseHandler{
		phaseService: ps,
	}
}

// GenerateSessionsHandler handles POST /tournaments/{tournamentID}/sessions.
// Requires a frozen roster; moves the tournament to IN_PROGRESS or, for the
// hybrid format, to GROUP_STAGE.
func (h *PhaseHandler) GenerateSessionsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournament, err := h.phaseService.GenerateSessions(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeGroupStageHandler handles POST /tournaments/{tournamentID}/group-stage/finalize.
// Snapshots the group ranking, builds the knockout bracket from qualifiers and
// moves the tournament to KNOCKOUT.
func (h *PhaseHandler) FinalizeGroupStageHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournament, err := h.phaseService.FinalizeGroupStage(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteHandler handles POST /tournaments/{tournamentID}/complete.
// Computes and stores the final ranking once every session is completed.
func (h *PhaseHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournament, err := h.phaseService.CompleteTournament(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
