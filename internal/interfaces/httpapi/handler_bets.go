package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBet")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req placeBetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))
	placed, err := h.betService.PlaceBet(ctx, usecase.PlaceBetInput{
		LeagueID:  leagueID,
		UserID:    principal.UserID,
		MatchID:   matchID,
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bet failed", "league_id", leagueID, "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if placed.UpdatedAt != nil {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, betViewToDTO(ctx, usecase.BetView{Bet: placed}))
}

func (h *Handler) DeleteBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteBet")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	betID := strings.TrimSpace(r.PathValue("betID"))
	if err := h.betService.DeleteBet(ctx, leagueID, betID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete bet failed", "league_id", leagueID, "bet_id", betID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMyBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyBets")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	views, err := h.betService.ListMyBets(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my bets failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]betDTO, 0, len(views))
	for _, v := range views {
		items = append(items, betViewToDTO(ctx, v))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatchBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchBets")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	matchID := strings.TrimSpace(r.PathValue("matchID"))
	views, err := h.betService.ListMatchBets(ctx, leagueID, matchID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match bets failed", "league_id", leagueID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]betDTO, 0, len(views))
	for _, v := range views {
		items = append(items, betViewToDTO(ctx, v))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
