package handlers

import (
	"net/http"

	"github.com/football-investment/practice-booking-system-sub021/middleware"
	"github.com/football-investment/practice-booking-system-sub021/services"
)

type RewardHandler struct {
	rewardService services.RewardService
}

func NewRewardHandler(rs services.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rs,
	}
}

// DistributeHandler handles POST /tournaments/{tournamentID}/rewards.
// Repeating the call returns the already stored rewards with 200.
func (h *RewardHandler) DistributeHandler(w http.ResponseWriter, r *http.Request) {
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

	rewards, err := h.rewardService.DistributeRewards(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rewards": rewards}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
