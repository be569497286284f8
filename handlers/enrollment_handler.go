package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub021/middleware"
	"github.com/football-investment/practice-booking-system-sub021/services"
)

type EnrollmentHandler struct {
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(es services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: es,
	}
}

// OpenHandler godoc
// @Summary Open enrollment for a tournament
// @Tags enrollment
// @Description Moves a DRAFT tournament to ENROLLING. Organizer only.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Updated tournament"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 403 {object} map[string]string "Caller is not the organizer"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 409 {object} map[string]string "Tournament is not in DRAFT"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/enrollment [post]
func (h *EnrollmentHandler) OpenHandler(w http.ResponseWriter, r *http.Request) {
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

	tournament, err := h.enrollmentService.OpenEnrollment(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EnrollHandler godoc
// @Summary Enroll a participant
// @Tags enrollment
// @Description Adds a participant to the roster while enrollment is open.
// @Description Without a body the caller enrolls themself; the organizer may
// @Description enroll any participant by id.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{} "Created enrollment"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 403 {object} map[string]string "Enrolling someone else without being organizer"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 409 {object} map[string]string "Already enrolled or enrollment closed"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [post]
func (h *EnrollmentHandler) EnrollHandler(w http.ResponseWriter, r *http.Request) {
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

	var input services.EnrollInput
	if err := readJSON(w, r, &input); err != nil {
		// An absent body means self-enrollment.
		if err.Error() != "body must not be empty" {
			badRequestResponse(w, r, err)
			return
		}
	}
	input.TournamentID = tournamentID
	input.CallerID = currentUserID
	if input.ParticipantID == 0 {
		input.ParticipantID = currentUserID
	}

	enrollment, err := h.enrollmentService.Enroll(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"enrollment": enrollment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CloseHandler godoc
// @Summary Close enrollment
// @Tags enrollment
// @Description Freezes the roster. The tournament stays in ENROLLING until
// @Description sessions are generated. Organizer only.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Updated tournament"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 403 {object} map[string]string "Caller is not the organizer"
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 409 {object} map[string]string "Roster already frozen or wrong phase"
// @Failure 422 {object} map[string]string "Too few participants for the format"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/enrollment [delete]
func (h *EnrollmentHandler) CloseHandler(w http.ResponseWriter, r *http.Request) {
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

	tournament, err := h.enrollmentService.CloseEnrollment(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
