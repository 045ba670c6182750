package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetLeagueStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStandings")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rows, err := h.standingService.GetLeagueStandings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, standingToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMemberStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMemberStats")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "me" {
		principal, err := requirePrincipal(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		userID = principal.UserID
	}

	row, err := h.standingService.GetMemberStats(ctx, leagueID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get member stats failed", "league_id", leagueID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, standingToDTO(row))
}
